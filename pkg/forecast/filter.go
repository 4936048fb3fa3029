package forecast

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/costexplorer"
)

// BuildFilter scopes a Cost Explorer query to one linked account in one
// region. Inputs are not validated.
func BuildFilter(account, region string) *costexplorer.Expression {
	return &costexplorer.Expression{
		And: []*costexplorer.Expression{
			dimension(costexplorer.DimensionLinkedAccount, account),
			dimension(costexplorer.DimensionRegion, region),
		},
	}
}

func dimension(key, value string) *costexplorer.Expression {
	return &costexplorer.Expression{
		Dimensions: &costexplorer.DimensionValues{
			Key:    aws.String(key),
			Values: aws.StringSlice([]string{value}),
		},
	}
}
