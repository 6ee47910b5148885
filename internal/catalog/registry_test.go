package catalog

import "testing"

// TestLoadRegistryResolvesServices asserts the invariant : every
// descriptor's service resolves to some ServiceDefinition.
func TestLoadRegistryResolvesServices(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	for _, d := range r.All() {
		if _, ok := Services[d.Service]; !ok {
			t.Fatalf("descriptor %q references unknown service %q", d.Key, d.Service)
		}
	}
}

func TestLookupEC2(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	d, ok := r.Lookup("ec2")
	if !ok {
		t.Fatal("expected ec2 descriptor to be present")
	}
	if d.IDField != "InstanceId" {
		t.Fatalf("IDField = %q, want InstanceId", d.IDField)
	}
}

func TestEffectiveIsGlobalOverride(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	d, ok := r.Lookup("s3-buckets")
	if !ok {
		t.Fatal("expected s3-buckets descriptor")
	}
	svc := r.ServiceFor(d)
	if !d.EffectiveIsGlobal(svc) {
		t.Fatal("expected s3-buckets descriptor override to report global")
	}

	d2, ok := r.Lookup("ec2")
	if !ok {
		t.Fatal("expected ec2 descriptor")
	}
	if d2.EffectiveIsGlobal(r.ServiceFor(d2)) {
		t.Fatal("expected ec2 to not be global")
	}
}
