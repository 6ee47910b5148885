// Package catalog holds the process-wide ServiceDefinition table and the
// ResourceDescriptor registry loaded from catalog JSON files at startup. The full
// catalog of every AWS resource is hand-authored data outside this repo; this
// package ships a representative sample under data/ sufficient to exercise the
// registry, dispatch, and projector.
package catalog

// Protocol is the wire protocol a service speaks.
type Protocol string

const (
	ProtocolJSON     Protocol = "json"
	ProtocolQuery    Protocol = "query"
	ProtocolRestJSON Protocol = "rest-json"
	ProtocolRestXML  Protocol = "rest-xml"
)

// ServiceDefinition is a process-wide constant describing how to reach and sign
// requests for one AWS service.
type ServiceDefinition struct {
	SigningName    string
	EndpointPrefix string
	APIVersion     string
	Protocol       Protocol
	TargetPrefix   string // only meaningful for ProtocolJSON
	JSONVersion    string // "1.0" or "1.1"; only meaningful for ProtocolJSON, defaults to "1.1"
	IsGlobal       bool
}

// Services is the static table mapping service keys to their ServiceDefinition.
// Global services are pinned to us-east-1 regardless of the user's selected region.
var Services = map[string]ServiceDefinition{
	"ec2": {
		SigningName:    "ec2",
		EndpointPrefix: "ec2",
		APIVersion:     "2016-11-15",
		Protocol:       ProtocolQuery,
	},
	"lambda": {
		SigningName:    "lambda",
		EndpointPrefix: "lambda",
		APIVersion:     "2015-03-31",
		Protocol:       ProtocolRestJSON,
	},
	"s3": {
		SigningName:    "s3",
		EndpointPrefix: "s3",
		APIVersion:     "2006-03-01",
		Protocol:       ProtocolRestXML,
	},
	"iam": {
		SigningName:    "iam",
		EndpointPrefix: "iam",
		APIVersion:     "2010-05-08",
		Protocol:       ProtocolQuery,
		IsGlobal:       true,
	},
	"dynamodb": {
		SigningName:    "dynamodb",
		EndpointPrefix: "dynamodb",
		APIVersion:     "2012-08-10",
		Protocol:       ProtocolJSON,
		TargetPrefix:   "DynamoDB_20120810",
		JSONVersion:    "1.0",
	},
	"ecs": {
		SigningName:    "ecs",
		EndpointPrefix: "ecs",
		APIVersion:     "2014-11-13",
		Protocol:       ProtocolJSON,
		TargetPrefix:   "AmazonEC2ContainerServiceV20141113",
	},
	"rds": {
		SigningName:    "rds",
		EndpointPrefix: "rds",
		APIVersion:     "2014-10-31",
		Protocol:       ProtocolQuery,
	},
	"sns": {
		SigningName:    "sns",
		EndpointPrefix: "sns",
		APIVersion:     "2010-03-31",
		Protocol:       ProtocolQuery,
	},
	"sqs": {
		SigningName:    "sqs",
		EndpointPrefix: "sqs",
		APIVersion:     "2012-11-05",
		Protocol:       ProtocolQuery,
	},
	"cloudformation": {
		SigningName:    "cloudformation",
		EndpointPrefix: "cloudformation",
		APIVersion:     "2010-05-15",
		Protocol:       ProtocolQuery,
	},
	"secretsmanager": {
		SigningName:    "secretsmanager",
		EndpointPrefix: "secretsmanager",
		APIVersion:     "2017-10-17",
		Protocol:       ProtocolJSON,
		TargetPrefix:   "secretsmanager",
	},
	"sts": {
		SigningName:    "sts",
		EndpointPrefix: "sts",
		APIVersion:     "2011-06-15",
		Protocol:       ProtocolQuery,
		IsGlobal:       true,
	},
}
