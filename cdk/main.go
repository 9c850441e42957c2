package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type RanksStackProps struct {
	awscdk.StackProps
}

func NewRanksStack(scope constructs.Construct, id string, props *RanksStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("RanksApi"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../"), nil),
		Timeout: awscdk.Duration_Seconds(jsii.Number(30)),
		Environment: &map[string]*string{
			"APP":                 jsii.String("prod"),
			"RANKING_SERVICE_URL": jsii.String(os.Getenv("RANKING_SERVICE_URL")),
			"DEFAULT_REGION":      jsii.String(envOr("DEFAULT_REGION", "norcal")),
			"REDIS_URL":           jsii.String(os.Getenv("REDIS_URL")),
			"ADMIN_KEY_HASH":      jsii.String(os.Getenv("ADMIN_KEY_HASH")),
			"LOG_FORMAT":          jsii.String("json"),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("RanksApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	app := awscdk.NewApp(nil)
	NewRanksStack(app, "RanksStack", &RanksStackProps{})
	app.Synth(nil)
}
