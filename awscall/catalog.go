package awscall

import (
	"fmt"
	"strings"
)

// The permission catalog maps (service, action) pairs to IAM permission
// identifiers. It is a plain lookup table so entries can be extended without
// touching the inference algorithm. Most mappings are 1:1
// (prefix:PascalCaseAction); the exceptions live in overrides.
type catalogEntry struct {
	// prefix is the IAM action namespace, which does not always match the
	// service name (CloudWatchLogs grants live under "logs").
	prefix    string
	actions   map[string]struct{}
	overrides map[string]string
}

func actionSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// serviceAliases maps alternate service spellings to catalog keys. The
// alternates mirror the upstream SDK's client naming so declarations written
// against either vocabulary resolve.
var serviceAliases = map[string]string{
	"cloudwatchevents":               "eventbridge",
	"events":                         "eventbridge",
	"cognitoidentityserviceprovider": "cognitoidentityprovider",
	"elasticfilesystem":              "efs",
	"elasticloadbalancing":           "elasticloadbalancingv2",
	"elbv2":                          "elasticloadbalancingv2",
	"es":                             "opensearch",
	"msk":                            "kafka",
	"ses":                            "sesv2",
	"stepfunctions":                  "sfn",
}

// CanonicalService lower-cases and de-aliases a service name into the key
// used by the permission catalog and the execution runtime's client
// registry. The declared casing still travels on the wire unchanged.
func CanonicalService(service string) string {
	key := strings.ToLower(service)
	if canonical, ok := serviceAliases[key]; ok {
		return canonical
	}
	return key
}

// ActionName converts a declared action to the SDK operation name, e.g.
// "putRetentionPolicy" to "PutRetentionPolicy". IAM permission names use
// the same form for most services.
func ActionName(action string) string {
	return pascalCase(action)
}

func pascalCase(action string) string {
	if action == "" {
		return action
	}
	return strings.ToUpper(action[:1]) + action[1:]
}

// lookupPermission resolves the IAM permission identifier for one call.
// Unknown pairs fail construction: the resource cannot deploy a call it
// cannot authorize, and a silent wildcard grant would be an over-broad
// default.
func lookupPermission(service, action string) (string, error) {
	key := CanonicalService(service)
	entry, ok := serviceCatalog[key]
	if !ok {
		return "", configErrorf([]string{"service"},
			fmt.Sprintf("unknown service %q: no permission mapping in the catalog; supply explicit statements with PolicyFromStatements", service))
	}
	name := pascalCase(action)
	if _, ok := entry.actions[name]; !ok {
		return "", configErrorf([]string{"service", "action"},
			fmt.Sprintf("no permission mapping for %s.%s; supply explicit statements with PolicyFromStatements", service, action))
	}
	if perm, ok := entry.overrides[name]; ok {
		return perm, nil
	}
	return entry.prefix + ":" + name, nil
}

var serviceCatalog = map[string]catalogEntry{
	"acm": {
		prefix: "acm",
		actions: actionSet("RequestCertificate", "DeleteCertificate", "DescribeCertificate",
			"ListCertificates", "AddTagsToCertificate", "RemoveTagsFromCertificate"),
	},
	"apigateway": {
		prefix: "apigateway",
		actions: actionSet("CreateRestApi", "DeleteRestApi", "GetRestApi", "UpdateRestApi",
			"CreateDeployment", "CreateApiKey", "DeleteApiKey", "FlushStageCache"),
	},
	"apigatewayv2": {
		prefix: "apigateway",
		actions: actionSet("CreateApi", "DeleteApi", "GetApi", "UpdateApi",
			"CreateStage", "DeleteStage", "UpdateStage"),
	},
	"appconfig": {
		prefix: "appconfig",
		actions: actionSet("CreateApplication", "DeleteApplication", "CreateEnvironment",
			"CreateConfigurationProfile", "StartDeployment", "StopDeployment"),
	},
	"athena": {
		prefix: "athena",
		actions: actionSet("StartQueryExecution", "StopQueryExecution", "GetQueryExecution",
			"GetQueryResults", "CreateWorkGroup", "DeleteWorkGroup", "UpdateWorkGroup"),
	},
	"autoscaling": {
		prefix: "autoscaling",
		actions: actionSet("CreateAutoScalingGroup", "DeleteAutoScalingGroup", "UpdateAutoScalingGroup",
			"SetDesiredCapacity", "DescribeAutoScalingGroups", "PutScalingPolicy", "DeletePolicy"),
	},
	"cloudfront": {
		prefix: "cloudfront",
		actions: actionSet("CreateInvalidation", "GetInvalidation", "CreateDistribution",
			"UpdateDistribution", "DeleteDistribution", "GetDistribution", "TagResource"),
	},
	"cloudtrail": {
		prefix:  "cloudtrail",
		actions: actionSet("CreateTrail", "DeleteTrail", "UpdateTrail", "StartLogging", "StopLogging"),
	},
	"cloudwatch": {
		prefix: "cloudwatch",
		actions: actionSet("PutMetricAlarm", "DeleteAlarms", "PutMetricData", "SetAlarmState",
			"PutDashboard", "DeleteDashboards", "PutAnomalyDetector", "DeleteAnomalyDetector"),
	},
	"cloudwatchlogs": {
		prefix: "logs",
		actions: actionSet("CreateLogGroup", "DeleteLogGroup", "PutRetentionPolicy", "DeleteRetentionPolicy",
			"CreateLogStream", "DeleteLogStream", "DescribeLogGroups", "PutSubscriptionFilter",
			"DeleteSubscriptionFilter", "PutResourcePolicy", "DeleteResourcePolicy", "TagLogGroup"),
	},
	"codebuild": {
		prefix: "codebuild",
		actions: actionSet("StartBuild", "StopBuild", "BatchGetBuilds", "CreateProject",
			"DeleteProject", "UpdateProject"),
	},
	"codecommit": {
		prefix: "codecommit",
		actions: actionSet("CreateRepository", "DeleteRepository", "GetRepository", "PutFile",
			"CreateBranch", "DeleteBranch", "TagResource"),
	},
	"codedeploy": {
		prefix: "codedeploy",
		actions: actionSet("CreateDeployment", "GetDeployment", "StopDeployment",
			"CreateApplication", "DeleteApplication", "CreateDeploymentGroup", "DeleteDeploymentGroup"),
	},
	"codepipeline": {
		prefix: "codepipeline",
		actions: actionSet("StartPipelineExecution", "StopPipelineExecution", "CreatePipeline",
			"DeletePipeline", "UpdatePipeline", "PutApprovalResult"),
	},
	"cognitoidentity": {
		prefix: "cognito-identity",
		actions: actionSet("CreateIdentityPool", "DeleteIdentityPool", "UpdateIdentityPool",
			"SetIdentityPoolRoles"),
	},
	"cognitoidentityprovider": {
		prefix: "cognito-idp",
		actions: actionSet("CreateUserPool", "DeleteUserPool", "UpdateUserPool",
			"CreateUserPoolClient", "DeleteUserPoolClient", "UpdateUserPoolClient",
			"AdminCreateUser", "AdminDeleteUser", "SetUserPoolMfaConfig", "CreateUserPoolDomain",
			"DeleteUserPoolDomain"),
	},
	"dynamodb": {
		prefix: "dynamodb",
		actions: actionSet("PutItem", "GetItem", "UpdateItem", "DeleteItem", "Query", "Scan",
			"BatchWriteItem", "CreateTable", "DeleteTable", "UpdateTable", "UpdateTimeToLive",
			"TagResource", "DescribeTable"),
	},
	"ec2": {
		prefix: "ec2",
		actions: actionSet("CreateTags", "DeleteTags", "DescribeInstances", "StartInstances",
			"StopInstances", "TerminateInstances", "ModifyInstanceAttribute", "CreateSnapshot",
			"DeleteSnapshot", "DescribeAvailabilityZones", "AllocateAddress", "ReleaseAddress",
			"AssociateAddress", "DisassociateAddress", "ModifyVpcAttribute"),
	},
	"ecr": {
		prefix: "ecr",
		actions: actionSet("PutImage", "BatchDeleteImage", "DescribeImages", "PutLifecyclePolicy",
			"DeleteLifecyclePolicy", "SetRepositoryPolicy", "DeleteRepositoryPolicy", "TagResource"),
	},
	"ecs": {
		prefix: "ecs",
		actions: actionSet("UpdateService", "RunTask", "StopTask", "RegisterTaskDefinition",
			"DeregisterTaskDefinition", "TagResource", "PutClusterCapacityProviders"),
	},
	"efs": {
		prefix: "elasticfilesystem",
		actions: actionSet("CreateFileSystem", "DeleteFileSystem", "UpdateFileSystem",
			"PutLifecycleConfiguration", "CreateAccessPoint", "DeleteAccessPoint", "PutFileSystemPolicy"),
	},
	"eks": {
		prefix: "eks",
		actions: actionSet("TagResource", "UntagResource", "UpdateClusterConfig",
			"UpdateClusterVersion", "DescribeCluster", "AssociateEncryptionConfig"),
	},
	"elasticache": {
		prefix: "elasticache",
		actions: actionSet("CreateCacheCluster", "DeleteCacheCluster", "ModifyCacheCluster",
			"RebootCacheCluster", "ModifyReplicationGroup", "AddTagsToResource"),
	},
	"elasticloadbalancingv2": {
		prefix: "elasticloadbalancing",
		actions: actionSet("ModifyLoadBalancerAttributes", "ModifyTargetGroupAttributes",
			"RegisterTargets", "DeregisterTargets", "AddTags", "RemoveTags", "SetSecurityGroups",
			"ModifyListener"),
	},
	"eventbridge": {
		prefix: "events",
		actions: actionSet("PutEvents", "PutRule", "DeleteRule", "PutTargets", "RemoveTargets",
			"EnableRule", "DisableRule", "PutPermission", "RemovePermission", "TagResource"),
	},
	"globalaccelerator": {
		prefix: "globalaccelerator",
		actions: actionSet("CreateAccelerator", "DeleteAccelerator", "UpdateAccelerator",
			"CreateEndpointGroup", "UpdateEndpointGroup", "DeleteEndpointGroup", "TagResource"),
	},
	"glue": {
		prefix: "glue",
		actions: actionSet("StartCrawler", "StopCrawler", "StartJobRun", "CreateDatabase",
			"DeleteDatabase", "CreateTable", "DeleteTable", "UpdateTable", "TagResource"),
	},
	"iam": {
		prefix: "iam",
		actions: actionSet("CreateServiceLinkedRole", "PutRolePolicy", "DeleteRolePolicy",
			"AttachRolePolicy", "DetachRolePolicy", "TagRole", "UntagRole",
			"UpdateAssumeRolePolicy", "PutRolePermissionsBoundary"),
	},
	"kafka": {
		prefix: "kafka",
		actions: actionSet("CreateConfiguration", "DeleteConfiguration", "UpdateClusterConfiguration",
			"RebootBroker", "TagResource", "UpdateBrokerStorage"),
	},
	"kinesis": {
		prefix: "kinesis",
		actions: actionSet("PutRecord", "PutRecords", "CreateStream", "DeleteStream",
			"UpdateShardCount", "IncreaseStreamRetentionPeriod", "DecreaseStreamRetentionPeriod",
			"AddTagsToStream"),
	},
	"kms": {
		prefix: "kms",
		actions: actionSet("CreateKey", "ScheduleKeyDeletion", "EnableKeyRotation",
			"DisableKeyRotation", "CreateAlias", "DeleteAlias", "UpdateAlias", "PutKeyPolicy",
			"CreateGrant", "RetireGrant", "TagResource", "DescribeKey"),
	},
	"lambda": {
		prefix: "lambda",
		actions: actionSet("Invoke", "CreateFunction", "DeleteFunction", "UpdateFunctionCode",
			"UpdateFunctionConfiguration", "PutFunctionConcurrency", "DeleteFunctionConcurrency",
			"AddPermission", "RemovePermission", "TagResource"),
		// The invoke operation is one of the few whose IAM name differs
		// from the API action.
		overrides: map[string]string{"Invoke": "lambda:InvokeFunction"},
	},
	"opensearch": {
		prefix: "es",
		actions: actionSet("UpdateDomainConfig", "DescribeDomain", "AddTags", "RemoveTags",
			"UpgradeDomain"),
	},
	"rds": {
		prefix: "rds",
		actions: actionSet("CreateDBSnapshot", "DeleteDBSnapshot", "ModifyDBInstance",
			"RebootDBInstance", "StartDBInstance", "StopDBInstance", "AddTagsToResource",
			"RemoveTagsFromResource"),
	},
	"redshift": {
		prefix: "redshift",
		actions: actionSet("CreateClusterSnapshot", "DeleteClusterSnapshot", "ModifyCluster",
			"RebootCluster", "PauseCluster", "ResumeCluster", "CreateTags"),
	},
	"route53": {
		prefix: "route53",
		actions: actionSet("ChangeResourceRecordSets", "GetChange", "CreateHostedZone",
			"DeleteHostedZone", "ChangeTagsForResource", "AssociateVPCWithHostedZone",
			"DisassociateVPCFromHostedZone"),
	},
	"s3": {
		prefix: "s3",
		actions: actionSet("PutObject", "GetObject", "DeleteObject", "CopyObject", "HeadObject",
			"ListObjectsV2", "PutObjectTagging", "PutBucketPolicy", "DeleteBucketPolicy",
			"PutBucketNotificationConfiguration", "PutBucketTagging", "PutBucketVersioning",
			"PutBucketLifecycleConfiguration", "DeleteBucketLifecycle", "PutBucketCors",
			"DeleteBucketCors"),
	},
	"secretsmanager": {
		prefix: "secretsmanager",
		actions: actionSet("CreateSecret", "DeleteSecret", "PutSecretValue", "GetSecretValue",
			"UpdateSecret", "RotateSecret", "TagResource", "UntagResource"),
	},
	"sesv2": {
		prefix: "ses",
		actions: actionSet("CreateEmailIdentity", "DeleteEmailIdentity",
			"PutEmailIdentityMailFromAttributes", "CreateConfigurationSet",
			"DeleteConfigurationSet", "SendEmail", "PutAccountSendingAttributes"),
	},
	"sfn": {
		prefix: "states",
		actions: actionSet("StartExecution", "StopExecution", "StartSyncExecution",
			"SendTaskSuccess", "SendTaskFailure", "SendTaskHeartbeat", "TagResource"),
	},
	"sns": {
		prefix: "sns",
		actions: actionSet("Publish", "Subscribe", "Unsubscribe", "SetTopicAttributes",
			"CreateTopic", "DeleteTopic", "TagResource", "SetSubscriptionAttributes"),
	},
	"sqs": {
		prefix: "sqs",
		actions: actionSet("SendMessage", "PurgeQueue", "SetQueueAttributes", "CreateQueue",
			"DeleteQueue", "TagQueue", "UntagQueue", "GetQueueAttributes"),
	},
	"ssm": {
		prefix: "ssm",
		actions: actionSet("PutParameter", "DeleteParameter", "GetParameter", "GetParameters",
			"AddTagsToResource", "RemoveTagsFromResource", "StartAutomationExecution",
			"SendCommand", "LabelParameterVersion"),
	},
	"wafv2": {
		prefix: "wafv2",
		actions: actionSet("CreateIPSet", "DeleteIPSet", "UpdateIPSet", "CreateWebACL",
			"DeleteWebACL", "UpdateWebACL", "AssociateWebACL", "DisassociateWebACL", "TagResource"),
	},
	"xray": {
		prefix: "xray",
		actions: actionSet("PutTraceSegments", "PutTelemetryRecords", "CreateGroup", "UpdateGroup",
			"DeleteGroup", "CreateSamplingRule", "DeleteSamplingRule", "UpdateSamplingRule"),
	},
}
