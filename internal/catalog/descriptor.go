package catalog

import "fmt"

// ColumnSpec describes one rendered table column.
type ColumnSpec struct {
	Header   string            `json:"header"`
	JSONPath string            `json:"json_path"`
	Width    int               `json:"width"`
	ColorMap map[string]string `json:"color_map,omitempty"`
}

// ResourceDescriptor is loaded from a catalog JSON file; one per resource type.
type ResourceDescriptor struct {
	Key            string       `json:"key"`
	DisplayName    string       `json:"display_name"`
	Service        string       `json:"service"`
	SDKMethod      string       `json:"sdk_method"`
	ResponsePath   string       `json:"response_path"`
	IDField        string       `json:"id_field"`
	NameField      string       `json:"name_field"`
	IsGlobal       *bool        `json:"is_global,omitempty"`
	Columns        []ColumnSpec `json:"columns"`
	ParentKey      string       `json:"parent_key,omitempty"`
	PageParam      string       `json:"page_param,omitempty"`
	PageTokenField string       `json:"page_token_field,omitempty"`
}

// EffectiveIsGlobal returns the descriptor's is_global override if set, else the
// owning service's default.
func (d ResourceDescriptor) EffectiveIsGlobal(svc ServiceDefinition) bool {
	if d.IsGlobal != nil {
		return *d.IsGlobal
	}
	return svc.IsGlobal
}

// Validate checks that the service exists and all required fields are present.
func (d ResourceDescriptor) Validate(services map[string]ServiceDefinition) error {
	if d.Key == "" {
		return fmt.Errorf("descriptor missing key")
	}
	if _, ok := services[d.Service]; !ok {
		return fmt.Errorf("descriptor %q references unknown service %q", d.Key, d.Service)
	}
	if d.SDKMethod == "" {
		return fmt.Errorf("descriptor %q missing sdk_method", d.Key)
	}
	if d.ResponsePath == "" {
		return fmt.Errorf("descriptor %q missing response_path", d.Key)
	}
	if d.IDField == "" {
		return fmt.Errorf("descriptor %q missing id_field", d.Key)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("descriptor %q has no columns", d.Key)
	}
	return nil
}
