package aws

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/aws/aws-sdk-go/service/costexplorer/costexploreriface"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	// DefaultRegion is used when no region is configured. Cost Explorer and
	// Organizations are only served from us-east-1.
	DefaultRegion = "us-east-1"
)

// Config holds the settings used to build the AWS API clients.
type Config struct {
	Region  string
	Profile string
	// Endpoint overrides the API endpoint of every client, used for local
	// testing against an AWS emulator.
	Endpoint string
}

// Clients bundles the AWS APIs the forecaster talks to. Every component
// receives the client it needs from here instead of building its own session.
type Clients struct {
	EC2           ec2iface.EC2API
	Organizations organizationsiface.OrganizationsAPI
	CostExplorer  costexploreriface.CostExplorerAPI
	S3            s3iface.S3API
}

// NewClients creates a session from cfg and the standard credential chain,
// and returns clients for every API.
func NewClients(cfg Config) (*Clients, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	awsCfg := aws.NewConfig().WithRegion(region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}

	awsSession, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		Profile:           cfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create AWS session: %w", err)
	}

	return &Clients{
		EC2:           ec2.New(awsSession),
		Organizations: organizations.New(awsSession),
		CostExplorer:  costexplorer.New(awsSession),
		S3:            s3.New(awsSession),
	}, nil
}
