package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/cost-forecaster/pkg/aws/awstest"
)

func TestActiveRegions(t *testing.T) {
	tests := map[string]struct {
		regions     []string
		err         error
		expected    []string
		expectedErr string
	}{
		"regions are returned in API order": {
			regions:  []string{"us-west-2", "eu-west-1", "us-east-1"},
			expected: []string{"us-west-2", "eu-west-1", "us-east-1"},
		},
		"no regions": {
			expected: []string{},
		},
		"API failure propagates": {
			err:         errors.New("UnauthorizedOperation"),
			expectedErr: "could not list active regions: UnauthorizedOperation",
		},
	}

	for testName, tt := range tests {
		testName := testName
		tt := tt
		t.Run(testName, func(t *testing.T) {
			inv := NewInventory(logrus.New(), &awstest.MockEC2{Regions: tt.regions, Err: tt.err}, nil)
			regions, err := inv.ActiveRegions(context.Background())
			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, regions)
		})
	}
}

func TestActiveAccounts(t *testing.T) {
	tests := map[string]struct {
		accounts    []awstest.Account
		nextToken   string
		err         error
		expected    []string
		expectedErr string
	}{
		"only ACTIVE accounts are kept": {
			accounts: []awstest.Account{
				{ID: "111111111111", Status: "ACTIVE"},
				{ID: "222222222222", Status: "SUSPENDED"},
				{ID: "333333333333", Status: "ACTIVE"},
				{ID: "444444444444", Status: "PENDING_CLOSURE"},
			},
			expected: []string{"111111111111", "333333333333"},
		},
		"a second page is ignored": {
			accounts:  []awstest.Account{{ID: "111111111111", Status: "ACTIVE"}},
			nextToken: "page-2",
			expected:  []string{"111111111111"},
		},
		"API failure propagates": {
			err:         errors.New("AccessDeniedException"),
			expectedErr: "could not list organization accounts: AccessDeniedException",
		},
	}

	for testName, tt := range tests {
		testName := testName
		tt := tt
		t.Run(testName, func(t *testing.T) {
			orgs := &awstest.MockOrganizations{Accounts: tt.accounts, NextToken: tt.nextToken, Err: tt.err}
			inv := NewInventory(logrus.New(), nil, orgs)
			accounts, err := inv.ActiveAccounts(context.Background())
			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, accounts)
		})
	}
}
