package dispatch

import (
	"context"
	"net/url"
	"testing"

	"github.com/chukul/cloudtop/internal/catalog"
)

// fakeWireClient drives responses by recorded call count, letting tests simulate
// paginated sequences without a real HTTPS round trip.
type fakeWireClient struct {
	queryResponses []any
	queryCalls     int
	lastForm       url.Values
}

func (f *fakeWireClient) JSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, body map[string]any) (any, error) {
	return nil, nil
}

func (f *fakeWireClient) QueryRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, form url.Values, idempotent bool) (any, error) {
	f.lastForm = form
	resp := f.queryResponses[f.queryCalls]
	f.queryCalls++
	return resp, nil
}

func (f *fakeWireClient) RestJSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body map[string]any) (any, error) {
	return nil, nil
}

func (f *fakeWireClient) RestXMLRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body []byte) (any, error) {
	return nil, nil
}

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	r, err := catalog.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	return r
}

func ec2InstancesDoc(nextToken string) map[string]any {
	doc := map[string]any{
		"Reservations": []any{
			map[string]any{
				"Instances": []any{
					map[string]any{
						"InstanceId":   "i-aaaaaaaaaaaaaaaaa",
						"InstanceType": "t3.micro",
						"State":        map[string]any{"Name": "running"},
					},
					map[string]any{
						"InstanceId":   "i-bbbbbbbbbbbbbbbbb",
						"InstanceType": "t3.small",
						"State":        map[string]any{"Name": "stopped"},
					},
				},
			},
		},
	}
	if nextToken != "" {
		doc["DescribeInstancesResponse"] = map[string]any{"nextToken": nextToken}
	}
	return doc
}

func TestFetchEC2ListProjectsRows(t *testing.T) {
	registry := testRegistry(t)
	fake := &fakeWireClient{queryResponses: []any{ec2InstancesDoc("")}}
	engine := NewEngine(registry, fake)

	page, err := engine.Fetch(context.Background(), "ec2", nil, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(page.Rows))
	}
	if page.Rows[0].Columns[0] != "i-aaaaaaaaaaaaaaaaa" {
		t.Fatalf("row0 InstanceId = %q", page.Rows[0].Columns[0])
	}
	if page.Rows[0].Columns[1] != "t3.micro" {
		t.Fatalf("row0 InstanceType = %q", page.Rows[0].Columns[1])
	}
	if page.Rows[0].Columns[2] != "running" {
		t.Fatalf("row0 State.Name = %q", page.Rows[0].Columns[2])
	}
	if page.Rows[1].Columns[2] != "stopped" {
		t.Fatalf("row1 State.Name = %q", page.Rows[1].Columns[2])
	}
	if page.NextToken != "" {
		t.Fatalf("NextToken = %q, want empty", page.NextToken)
	}
}

func TestFetchPaginationForwardAndBack(t *testing.T) {
	registry := testRegistry(t)
	page2Doc := map[string]any{
		"Reservations": []any{
			map[string]any{
				"Instances": []any{
					map[string]any{
						"InstanceId":   "i-ccccccccccccccccc",
						"InstanceType": "m5.large",
						"State":        map[string]any{"Name": "running"},
					},
				},
			},
		},
	}
	fake := &fakeWireClient{queryResponses: []any{ec2InstancesDoc("p2"), page2Doc, ec2InstancesDoc("")}}
	engine := NewEngine(registry, fake)
	cursor := NewCursor("ec2", "")

	first, err := engine.Fetch(context.Background(), "ec2", nil, cursor.Current())
	if err != nil {
		t.Fatalf("Fetch page1: %v", err)
	}
	if first.NextToken != "p2" {
		t.Fatalf("page1 NextToken = %q, want p2", first.NextToken)
	}

	cursor.Push(first.NextToken)
	second, err := engine.Fetch(context.Background(), "ec2", nil, cursor.Current())
	if err != nil {
		t.Fatalf("Fetch page2: %v", err)
	}
	if len(second.Rows) != 1 || second.Rows[0].Columns[0] != "i-ccccccccccccccccc" {
		t.Fatalf("unexpected page2 rows: %+v", second.Rows)
	}
	if fake.lastForm.Get("NextToken") != "p2" {
		t.Fatalf("page2 request NextToken = %q, want p2", fake.lastForm.Get("NextToken"))
	}

	if !cursor.Pop() {
		t.Fatal("expected Pop to succeed")
	}
	if !cursor.AtFirstPage() {
		t.Fatal("expected cursor back at first page after popping page2's token")
	}

	back, err := engine.Fetch(context.Background(), "ec2", nil, cursor.Current())
	if err != nil {
		t.Fatalf("Fetch back to page1: %v", err)
	}
	if len(back.Rows) != 2 || back.Rows[0].Columns[0] != "i-aaaaaaaaaaaaaaaaa" {
		t.Fatalf("back-navigation did not return the first page's rows: %+v", back.Rows)
	}
}
