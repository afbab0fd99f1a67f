package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/smithy-go"

	"github.com/TechInSite/aws-cdk/cdk"
	"github.com/TechInSite/aws-cdk/internal/engine"
	"github.com/TechInSite/aws-cdk/internal/logging"
)

// roleAPI is the slice of the IAM surface the provisioner uses.
type roleAPI interface {
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	UpdateAssumeRolePolicy(ctx context.Context, params *iam.UpdateAssumeRolePolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAssumeRolePolicyOutput, error)
	PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
	DeleteRolePolicy(ctx context.Context, params *iam.DeleteRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DeleteRolePolicyOutput, error)
	DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error)
}

// inlinePolicyName is the single inline policy each provisioned role
// carries; the declared grants live there.
const inlinePolicyName = "awscdk-grants"

// RoleProvisioner materializes template roles as IAM roles. Each role gets
// the declared assume-role document and one inline policy with the grant
// statements.
type RoleProvisioner struct {
	client roleAPI
}

var _ engine.RoleProvisioner = (*RoleProvisioner)(nil)

// NewRoleProvisioner builds a provisioner over the shared config.
func NewRoleProvisioner(cfg awsv2.Config) *RoleProvisioner {
	return &RoleProvisioner{client: iam.NewFromConfig(cfg)}
}

// Ensure creates the named role or brings an existing one in line with the
// template, and returns its arn.
func (p *RoleProvisioner) Ensure(ctx context.Context, name string, role cdk.TemplateRole) (string, error) {
	assumeDoc, err := json.Marshal(role.AssumeRolePolicyDocument)
	if err != nil {
		return "", fmt.Errorf("failed to encode assume role document for %s: %w", name, err)
	}

	var arn string
	created, err := p.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 awsv2.String(name),
		AssumeRolePolicyDocument: awsv2.String(string(assumeDoc)),
	})
	switch {
	case err == nil:
		arn = awsv2.ToString(created.Role.Arn)
	case errorCode(err) == "EntityAlreadyExists":
		if _, err := p.client.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
			RoleName:       awsv2.String(name),
			PolicyDocument: awsv2.String(string(assumeDoc)),
		}); err != nil {
			return "", fmt.Errorf("failed to update assume role policy of %s: %w", name, err)
		}
		existing, err := p.client.GetRole(ctx, &iam.GetRoleInput{RoleName: awsv2.String(name)})
		if err != nil {
			return "", fmt.Errorf("failed to read role %s: %w", name, err)
		}
		arn = awsv2.ToString(existing.Role.Arn)
	default:
		return "", fmt.Errorf("failed to create role %s: %w", name, err)
	}

	if len(role.Statements) > 0 {
		policyDoc, err := json.Marshal(map[string]any{
			"Version":   "2012-10-17",
			"Statement": role.Statements,
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode policy document for %s: %w", name, err)
		}
		if _, err := p.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       awsv2.String(name),
			PolicyName:     awsv2.String(inlinePolicyName),
			PolicyDocument: awsv2.String(string(policyDoc)),
		}); err != nil {
			return "", fmt.Errorf("failed to attach grants to role %s: %w", name, err)
		}
	}

	logging.Debug("role ensured", "role", name, "arn", arn)
	return arn, nil
}

// Delete removes the inline policy and the role. A role already gone is not
// an error.
func (p *RoleProvisioner) Delete(ctx context.Context, name string) error {
	if _, err := p.client.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   awsv2.String(name),
		PolicyName: awsv2.String(inlinePolicyName),
	}); err != nil && errorCode(err) != "NoSuchEntity" {
		return fmt.Errorf("failed to detach grants from role %s: %w", name, err)
	}

	if _, err := p.client.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: awsv2.String(name),
	}); err != nil && errorCode(err) != "NoSuchEntity" {
		return fmt.Errorf("failed to delete role %s: %w", name, err)
	}

	logging.Debug("role deleted", "role", name)
	return nil
}

// errorCode extracts the smithy API error code, or "" for transport errors.
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
