package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	log "github.com/sirupsen/logrus"
)

// Enumerator lists the accounts and regions a forecast run iterates over.
type Enumerator interface {
	ActiveRegions(ctx context.Context) ([]string, error)
	ActiveAccounts(ctx context.Context) ([]string, error)
}

type inventory struct {
	logger log.FieldLogger
	ec2API ec2iface.EC2API
	orgAPI organizationsiface.OrganizationsAPI
}

// NewInventory returns an Enumerator backed by the EC2 and Organizations APIs.
func NewInventory(logger log.FieldLogger, ec2API ec2iface.EC2API, orgAPI organizationsiface.OrganizationsAPI) Enumerator {
	return &inventory{
		logger: logger.WithField("component", "inventory"),
		ec2API: ec2API,
		orgAPI: orgAPI,
	}
}

// ActiveRegions returns the regions enabled for the caller, in the order the
// API returns them.
func (i *inventory) ActiveRegions(ctx context.Context) ([]string, error) {
	out, err := i.ec2API.DescribeRegionsWithContext(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("could not list active regions: %w", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, region := range out.Regions {
		regions = append(regions, aws.StringValue(region.RegionName))
	}
	i.logger.Debugf("found %d active regions", len(regions))
	return regions, nil
}

// ActiveAccounts returns the IDs of organization accounts with an ACTIVE
// status. Only the first page of ListAccounts is read.
func (i *inventory) ActiveAccounts(ctx context.Context) ([]string, error) {
	out, err := i.orgAPI.ListAccountsWithContext(ctx, &organizations.ListAccountsInput{})
	if err != nil {
		return nil, fmt.Errorf("could not list organization accounts: %w", err)
	}
	if out.NextToken != nil {
		i.logger.Warnf("ListAccounts returned more than one page, only the first %d accounts are used", len(out.Accounts))
	}

	var accounts []string
	for _, account := range out.Accounts {
		if aws.StringValue(account.Status) != organizations.AccountStatusActive {
			continue
		}
		accounts = append(accounts, aws.StringValue(account.Id))
	}
	i.logger.Debugf("found %d active accounts out of %d", len(accounts), len(out.Accounts))
	return accounts, nil
}
