package aws

import (
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/appconfig"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	"github.com/aws/aws-sdk-go-v2/service/codecommit"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/globalaccelerator"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kafka"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/opensearch"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	"github.com/aws/aws-sdk-go-v2/service/xray"
)

// newClients constructs one client per service the permission catalog
// covers, keyed by canonical service name. Declarations reach a client
// through awscall.CanonicalService, so the alias spellings land here too.
func newClients(cfg awsv2.Config) map[string]any {
	return map[string]any{
		"acm":                     acm.NewFromConfig(cfg),
		"apigateway":              apigateway.NewFromConfig(cfg),
		"apigatewayv2":            apigatewayv2.NewFromConfig(cfg),
		"appconfig":               appconfig.NewFromConfig(cfg),
		"athena":                  athena.NewFromConfig(cfg),
		"autoscaling":             autoscaling.NewFromConfig(cfg),
		"cloudfront":              cloudfront.NewFromConfig(cfg),
		"cloudtrail":              cloudtrail.NewFromConfig(cfg),
		"cloudwatch":              cloudwatch.NewFromConfig(cfg),
		"cloudwatchlogs":          cloudwatchlogs.NewFromConfig(cfg),
		"codebuild":               codebuild.NewFromConfig(cfg),
		"codecommit":              codecommit.NewFromConfig(cfg),
		"codedeploy":              codedeploy.NewFromConfig(cfg),
		"codepipeline":            codepipeline.NewFromConfig(cfg),
		"cognitoidentity":         cognitoidentity.NewFromConfig(cfg),
		"cognitoidentityprovider": cognitoidentityprovider.NewFromConfig(cfg),
		"dynamodb":                dynamodb.NewFromConfig(cfg),
		"ec2":                     ec2.NewFromConfig(cfg),
		"ecr":                     ecr.NewFromConfig(cfg),
		"ecs":                     ecs.NewFromConfig(cfg),
		"efs":                     efs.NewFromConfig(cfg),
		"eks":                     eks.NewFromConfig(cfg),
		"elasticache":             elasticache.NewFromConfig(cfg),
		"elasticloadbalancingv2":  elasticloadbalancingv2.NewFromConfig(cfg),
		"eventbridge":             eventbridge.NewFromConfig(cfg),
		"globalaccelerator":       globalaccelerator.NewFromConfig(cfg),
		"glue":                    glue.NewFromConfig(cfg),
		"iam":                     iam.NewFromConfig(cfg),
		"kafka":                   kafka.NewFromConfig(cfg),
		"kinesis":                 kinesis.NewFromConfig(cfg),
		"kms":                     kms.NewFromConfig(cfg),
		"lambda":                  lambda.NewFromConfig(cfg),
		"opensearch":              opensearch.NewFromConfig(cfg),
		"rds":                     rds.NewFromConfig(cfg),
		"redshift":                redshift.NewFromConfig(cfg),
		"route53":                 route53.NewFromConfig(cfg),
		"s3":                      s3.NewFromConfig(cfg),
		"secretsmanager":          secretsmanager.NewFromConfig(cfg),
		"sesv2":                   sesv2.NewFromConfig(cfg),
		"sfn":                     sfn.NewFromConfig(cfg),
		"sns":                     sns.NewFromConfig(cfg),
		"sqs":                     sqs.NewFromConfig(cfg),
		"ssm":                     ssm.NewFromConfig(cfg),
		"wafv2":                   wafv2.NewFromConfig(cfg),
		"xray":                    xray.NewFromConfig(cfg),
	}
}
