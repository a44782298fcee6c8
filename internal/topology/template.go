package topology

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format is a template serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ExistingDistributionParam names the template parameter that records a
// pre-existing distribution id for update-in-place deployments.
const ExistingDistributionParam = "ExistingDistributionId"

// Template returns the CloudFormation template of the plan.
func (p *Plan) Template() map[string]any {
	resources := make(map[string]any, len(p.Resources))
	for _, r := range p.Resources {
		body := map[string]any{
			"Type":       r.Type,
			"Properties": r.Properties,
		}
		if len(r.DependsOn) > 0 {
			deps := make([]any, 0, len(r.DependsOn))
			for _, d := range r.DependsOn {
				deps = append(deps, d)
			}
			body["DependsOn"] = deps
		}
		if r.DeletionPolicy != "" {
			body["DeletionPolicy"] = r.DeletionPolicy
			body["UpdateReplacePolicy"] = r.DeletionPolicy
		}
		resources[r.LogicalID] = body
	}

	outputs := make(map[string]any, len(p.Outputs))
	for _, o := range p.Outputs {
		outputs[o.Key] = map[string]any{
			"Description": o.Description,
			"Value":       o.Value,
			"Export":      map[string]any{"Name": o.ExportName},
		}
	}

	tmpl := map[string]any{
		"AWSTemplateFormatVersion": "2010-09-09",
		"Resources":                resources,
		"Outputs":                  outputs,
	}
	if p.Config.Description != "" {
		tmpl["Description"] = p.Config.Description
	}
	if p.Config.DistributionID != "" {
		tmpl["Parameters"] = map[string]any{
			ExistingDistributionParam: map[string]any{
				"Type":        "String",
				"Default":     p.Config.DistributionID,
				"Description": "CloudFront distribution id of an existing deployment",
			},
		}
	}
	return tmpl
}

// RenderTemplate serializes the plan's template. Map keys are emitted in
// sorted order by both encoders, so equal plans render to equal bytes.
func RenderTemplate(p *Plan, format Format) ([]byte, error) {
	tmpl := p.Template()
	switch format {
	case FormatJSON:
		return json.MarshalIndent(tmpl, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(tmpl)
	default:
		return nil, fmt.Errorf("unknown template format %q", format)
	}
}
