package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclRoot is the top-level structure of a plugin .hcl file for decoding.
type hclRoot struct {
	Processes []hclProcess `hcl:"process,block"`
}

type hclProcess struct {
	ID          string     `hcl:"id,label"`
	Name        string     `hcl:"name,optional"`
	Description string     `hcl:"description,optional"`
	Version     string     `hcl:"version"`
	Phases      []hclPhase `hcl:"phase,block"`
}

type hclPhase struct {
	Task       string         `hcl:"task,label"`
	Agent      string         `hcl:"agent"`
	Prompt     string         `hcl:"prompt"`
	Output     cty.Value      `hcl:"output"`
	Field      string         `hcl:"field,optional"`
	Breakpoint *hclBreakpoint `hcl:"breakpoint,block"`
}

type hclBreakpoint struct {
	Title    string `hcl:"title"`
	Question string `hcl:"question"`
}

// LoadHCLDefinitionDir scans a directory for *.hcl process files and returns the parsed definitions.
// A single file may declare several process blocks.
func LoadHCLDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	parser := hclparse.NewParser()
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".hcl" {
			continue
		}
		fileDefs, err := loadHCLDefinitionFile(parser, filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

func loadHCLDefinitionFile(parser *hclparse.Parser, path string) ([]DefinitionFile, error) {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin: parse %s: %w", path, diags)
	}
	var root hclRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin: decode %s: %w", path, diags)
	}
	files := make([]DefinitionFile, 0, len(root.Processes))
	for idx, block := range root.Processes {
		def, err := block.toDefinition()
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", path, err)
		}
		files = append(files, DefinitionFile{Definition: def.Normalized(), Path: fmt.Sprintf("%s#%d", filepath.Clean(path), idx+1)})
	}
	return files, nil
}

func (block hclProcess) toDefinition() (ProcessDefinition, error) {
	def := ProcessDefinition{
		ID:          block.ID,
		Name:        block.Name,
		Description: block.Description,
		Version:     block.Version,
	}
	for _, phase := range block.Phases {
		output, err := ctyToGo(phase.Output)
		if err != nil {
			return ProcessDefinition{}, fmt.Errorf("phase %s: output: %w", phase.Task, err)
		}
		outputMap, ok := output.(map[string]any)
		if !ok {
			return ProcessDefinition{}, fmt.Errorf("phase %s: output must be an object", phase.Task)
		}
		parsed := PhaseDefinition{
			Task:   phase.Task,
			Agent:  phase.Agent,
			Prompt: phase.Prompt,
			Output: outputMap,
			Field:  phase.Field,
		}
		if phase.Breakpoint != nil {
			parsed.Breakpoint = &BreakpointDefinition{
				Title:    phase.Breakpoint.Title,
				Question: phase.Breakpoint.Question,
			}
		}
		def.Phases = append(def.Phases, parsed)
	}
	return def, nil
}

// ctyToGo lowers an HCL value into the plain Go tree the schema decoder
// expects. Whole numbers stay float64; the decoder accepts both.
func ctyToGo(value cty.Value) (any, error) {
	if value.IsNull() {
		return nil, nil
	}
	ty := value.Type()
	switch {
	case ty == cty.String:
		return value.AsString(), nil
	case ty == cty.Bool:
		return value.True(), nil
	case ty == cty.Number:
		f, _ := value.AsBigFloat().Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, value.LengthInt())
		for it := value.ElementIterator(); it.Next(); {
			key, entry := it.Element()
			converted, err := ctyToGo(entry)
			if err != nil {
				return nil, err
			}
			out[key.AsString()] = converted
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, value.LengthInt())
		for it := value.ElementIterator(); it.Next(); {
			_, entry := it.Element()
			converted, err := ctyToGo(entry)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
