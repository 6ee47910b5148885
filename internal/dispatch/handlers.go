package dispatch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chukul/cloudtop/internal/catalog"
)

// wireClient is the slice of sigv4.Client the dispatch handlers need, narrowed to an
// interface so tests can substitute a fixture-backed fake instead of a real signed
// HTTPS client.
type wireClient interface {
	JSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, body map[string]any) (any, error)
	QueryRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, form url.Values, idempotent bool) (any, error)
	RestJSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body map[string]any) (any, error)
	RestXMLRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body []byte) (any, error)
}

// Handler knows the wire action name, request-body shape, and next-token field name
// for one (service, sdk_method) operation. The next-token field varies per AWS
// operation, so each one is encoded here individually rather than per-service.
type Handler struct {
	// NextTokenField is the field in the response holding the next page's token, or
	// "" if the operation does not paginate.
	NextTokenField string
	// Invoke performs the request, merging params (filters / parent scoping values)
	// and pageToken (the token to resume from, or "" for the first page).
	Invoke func(ctx context.Context, client wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error)
}

// handlerKey identifies a handler by (service key, sdk_method).
type handlerKey struct {
	service   string
	sdkMethod string
}

// handlers is the operation handler table. New resource descriptors must have a
// matching entry here, keyed by (descriptor.Service, descriptor.SDKMethod).
var handlers = map[handlerKey]Handler{
	{"ec2", "describe_instances"}: {
		NextTokenField: "DescribeInstancesResponse.nextToken",
		Invoke: func(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
			form := url.Values{}
			for k, v := range params {
				form.Set(k, v)
			}
			if pageToken != "" {
				form.Set("NextToken", pageToken)
			}
			return c.QueryRequest(ctx, svc, isGlobal, "DescribeInstances", form, true)
		},
	},
	{"iam", "list_users"}: {
		NextTokenField: "ListUsersResponse.ListUsersResult.Marker",
		Invoke: func(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
			form := url.Values{}
			for k, v := range params {
				form.Set(k, v)
			}
			if pageToken != "" {
				form.Set("Marker", pageToken)
			}
			return c.QueryRequest(ctx, svc, isGlobal, "ListUsers", form, true)
		},
	},
	{"iam", "list_roles"}: {
		NextTokenField: "ListRolesResponse.ListRolesResult.Marker",
		Invoke: func(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
			form := url.Values{}
			for k, v := range params {
				form.Set(k, v)
			}
			if pageToken != "" {
				form.Set("Marker", pageToken)
			}
			return c.QueryRequest(ctx, svc, isGlobal, "ListRoles", form, true)
		},
	},
	{"lambda", "list_functions"}: {
		NextTokenField: "NextMarker",
		Invoke: func(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
			q := url.Values{}
			for k, v := range params {
				q.Set(k, v)
			}
			if pageToken != "" {
				q.Set("Marker", pageToken)
			}
			return c.RestJSONRequest(ctx, svc, isGlobal, "GET", "/2015-03-31/functions", q, nil)
		},
	},
	{"s3", "list_buckets"}: {
		NextTokenField: "",
		Invoke: func(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
			return c.RestXMLRequest(ctx, svc, isGlobal, "GET", "/", nil, nil)
		},
	},
	{"ecs", "list_clusters_described"}: {
		NextTokenField: "nextToken",
		Invoke: invokeECSListClustersDescribed,
	},
	{"ecs", "list_services_described"}: {
		NextTokenField: "nextToken",
		Invoke: invokeECSListServicesDescribed,
	},
}

// lookupHandler finds the handler for a descriptor's (service, sdk_method) pair.
func lookupHandler(service, sdkMethod string) (Handler, error) {
	h, ok := handlers[handlerKey{service, sdkMethod}]
	if !ok {
		return Handler{}, fmt.Errorf("no dispatch handler registered for %s.%s", service, sdkMethod)
	}
	return h, nil
}

// invokeECSListClustersDescribed implements the two-call ECS list+describe pattern:
// ListClusters returns ARNs and a pagination token; DescribeClusters hydrates the
// full cluster objects the table columns project against.
func invokeECSListClustersDescribed(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
	listBody := map[string]any{}
	if pageToken != "" {
		listBody["nextToken"] = pageToken
	}
	listResp, err := c.JSONRequest(ctx, svc, isGlobal, "ListClusters", listBody)
	if err != nil {
		return nil, err
	}

	listObj, _ := listResp.(map[string]any)
	arns, _ := listObj["clusterArns"].([]any)
	if len(arns) == 0 {
		return map[string]any{"clusters": []any{}, "nextToken": listObj["nextToken"]}, nil
	}

	describeResp, err := c.JSONRequest(ctx, svc, isGlobal, "DescribeClusters", map[string]any{
		"clusters": arns,
		"include":  []any{"STATISTICS"},
	})
	if err != nil {
		return nil, err
	}
	describeObj, _ := describeResp.(map[string]any)
	describeObj["nextToken"] = listObj["nextToken"]
	return describeObj, nil
}

// invokeECSListServicesDescribed mirrors invokeECSListClustersDescribed, scoped to
// the cluster named in params["cluster"] (the parent_key value for child resources).
func invokeECSListServicesDescribed(ctx context.Context, c wireClient, svc catalog.ServiceDefinition, isGlobal bool, params map[string]string, pageToken string) (any, error) {
	cluster := params["cluster"]
	listBody := map[string]any{"cluster": cluster}
	if pageToken != "" {
		listBody["nextToken"] = pageToken
	}
	listResp, err := c.JSONRequest(ctx, svc, isGlobal, "ListServices", listBody)
	if err != nil {
		return nil, err
	}

	listObj, _ := listResp.(map[string]any)
	arns, _ := listObj["serviceArns"].([]any)
	if len(arns) == 0 {
		return map[string]any{"services": []any{}, "nextToken": listObj["nextToken"]}, nil
	}

	describeResp, err := c.JSONRequest(ctx, svc, isGlobal, "DescribeServices", map[string]any{
		"cluster":  cluster,
		"services": arns,
	})
	if err != nil {
		return nil, err
	}
	describeObj, _ := describeResp.(map[string]any)
	describeObj["nextToken"] = listObj["nextToken"]
	return describeObj, nil
}
