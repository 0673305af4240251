// Package markdown parses the .pflow.md human-authoring format into the
// canonical internal/ir.Workflow, per the specification's "both forms
// share the same downstream pipeline" rule: everything downstream of
// Parse only ever sees an ir.Workflow.
package markdown

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/pflowerr"
	"gopkg.in/yaml.v3"
)

type section int

const (
	sectionNone section = iota
	sectionInputs
	sectionSteps
	sectionOutputs
	sectionEdges
)

// Parse reads a .pflow.md document and returns the canonical workflow it
// describes. The result still needs ir.Validate before compilation.
func Parse(src string) (*ir.Workflow, error) {
	p := &parser{w: &ir.Workflow{IRVersion: "0.1.0"}}
	if err := p.run(src); err != nil {
		return nil, err
	}
	p.w.Normalize()
	return p.w, nil
}

type parser struct {
	w            *ir.Workflow
	section      section
	lines        []string
	i            int
	currentInput string
	currentNode  *ir.Node
	nodeOrder    []string
	descLines    []string
	sawTitle     bool
}

func (p *parser) run(src string) error {
	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		p.lines = append(p.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading markdown source: %w", err)
	}

	for p.i = 0; p.i < len(p.lines); p.i++ {
		line := p.lines[p.i]
		switch {
		case strings.HasPrefix(line, "# "):
			p.w.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			p.sawTitle = true
		case strings.HasPrefix(line, "## "):
			if err := p.enterSection(strings.TrimSpace(strings.TrimPrefix(line, "## "))); err != nil {
				return err
			}
		case strings.HasPrefix(line, "### "):
			if err := p.enterSubsection(strings.TrimSpace(strings.TrimPrefix(line, "### "))); err != nil {
				return err
			}
		case strings.HasPrefix(strings.TrimSpace(line), "```"):
			if err := p.consumeFence(); err != nil {
				return err
			}
		case strings.HasPrefix(strings.TrimSpace(line), "- "):
			if err := p.consumeBullet(strings.TrimSpace(line)); err != nil {
				return err
			}
		case strings.TrimSpace(line) == "":
			// blank line: ends a description paragraph accumulation
		default:
			if p.section == sectionNone && p.sawTitle {
				p.descLines = append(p.descLines, strings.TrimSpace(line))
			}
		}
	}

	p.flushCurrentNode()
	if len(p.descLines) > 0 {
		p.w.Description = strings.Join(p.descLines, " ")
	}
	p.wireImplicitEdges()
	return nil
}

func (p *parser) enterSection(title string) error {
	p.flushCurrentNode()
	switch strings.ToLower(title) {
	case "inputs":
		p.section = sectionInputs
		if p.w.Inputs == nil {
			p.w.Inputs = map[string]ir.InputSpec{}
		}
	case "steps":
		p.section = sectionSteps
	case "outputs":
		p.section = sectionOutputs
		if p.w.Outputs == nil {
			p.w.Outputs = map[string]ir.OutputSpec{}
		}
	default:
		p.section = sectionNone
	}
	return nil
}

func (p *parser) enterSubsection(name string) error {
	switch p.section {
	case sectionInputs:
		p.currentInput = name
		p.w.Inputs[name] = ir.InputSpec{}
	case sectionSteps:
		if strings.EqualFold(name, "edges") {
			p.section = sectionEdges
			return nil
		}
		p.flushCurrentNode()
		p.currentNode = &ir.Node{ID: name, Params: map[string]interface{}{}}
		p.nodeOrder = append(p.nodeOrder, name)
	}
	return nil
}

func (p *parser) flushCurrentNode() {
	if p.currentNode == nil {
		return
	}
	if t, ok := p.currentNode.Params["type"].(string); ok {
		p.currentNode.Type = t
		delete(p.currentNode.Params, "type")
	}
	if purpose, ok := p.currentNode.Params["purpose"].(string); ok {
		p.currentNode.Purpose = purpose
		delete(p.currentNode.Params, "purpose")
	}
	p.w.Nodes = append(p.w.Nodes, *p.currentNode)
	p.currentNode = nil
}

// consumeBullet parses a "- key: value" bullet into the current
// inputs/outputs/node context, coercing the value the way YAML scalars
// do (true/false -> bool, digits -> int, else string) via yaml.v3's own
// scalar decoder rather than a hand-rolled coercion table.
func (p *parser) consumeBullet(line string) error {
	body := strings.TrimPrefix(line, "- ")
	colon := strings.Index(body, ":")
	if colon < 0 {
		return pflowerr.IRSchemaError("", fmt.Sprintf("malformed bullet %q: expected 'key: value'", line))
	}
	key := strings.TrimSpace(body[:colon])
	rawVal := strings.TrimSpace(body[colon+1:])
	val := coerceScalar(rawVal)

	switch p.section {
	case sectionInputs:
		if p.currentInput == "" {
			return nil
		}
		spec := p.w.Inputs[p.currentInput]
		switch key {
		case "type":
			spec.Type, _ = val.(string)
		case "required":
			b, _ := val.(bool)
			spec.Required = b
		case "default":
			spec.Default = val
		case "description":
			spec.Description, _ = val.(string)
		}
		p.w.Inputs[p.currentInput] = spec
	case sectionOutputs:
		spec := p.w.Outputs[key]
		if s, ok := val.(string); ok {
			spec.Source = s
		}
		p.w.Outputs[key] = spec
	case sectionSteps:
		if p.currentNode != nil {
			p.currentNode.Params[key] = val
		}
	}
	return nil
}

// coerceScalar mirrors YAML's implicit scalar typing for a single bare
// value, reusing gopkg.in/yaml.v3's own decoder so "true"/"123"/"1.5"
// coerce exactly the way a YAML document would, instead of a hand-rolled
// table that would drift from it.
func coerceScalar(raw string) interface{} {
	var v interface{}
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// consumeFence reads a fenced code block starting at p.lines[p.i] (the
// opening ``` line) through its closing ```. Recognized info strings:
// "prompt", "shell command", "markdown prompt" become a params entry
// keyed by the first word of the info string; "yaml batch" is parsed as
// YAML into params["batch"].
func (p *parser) consumeFence() error {
	opening := strings.TrimSpace(p.lines[p.i])
	info := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(opening, "```")))

	start := p.i + 1
	end := start
	for end < len(p.lines) && strings.TrimSpace(p.lines[end]) != "```" {
		end++
	}
	if end >= len(p.lines) {
		return pflowerr.IRSchemaError("", "unterminated fenced code block")
	}
	body := strings.Join(p.lines[start:end], "\n")
	p.i = end

	if p.section == sectionEdges {
		return p.parseEdgesYAML(body)
	}
	if p.currentNode == nil {
		return nil
	}

	switch info {
	case "yaml batch":
		var batch interface{}
		if err := yaml.Unmarshal([]byte(body), &batch); err != nil {
			return pflowerr.IRSchemaError("", fmt.Sprintf("invalid yaml batch block: %v", err))
		}
		p.currentNode.Params["batch"] = normalizeYAML(batch)
	case "prompt", "shell command", "markdown prompt":
		key := strings.Fields(info)[0]
		p.currentNode.Params[key] = body
	default:
		if info != "" {
			p.currentNode.Params[strings.Fields(info)[0]] = body
		}
	}
	return nil
}

func (p *parser) parseEdgesYAML(body string) error {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
		return pflowerr.IRSchemaError("", fmt.Sprintf("invalid edges override block: %v", err))
	}
	for _, e := range raw {
		from, _ := e["from"].(string)
		to, _ := e["to"].(string)
		action, _ := e["action"].(string)
		if action == "" {
			action = ir.DefaultAction
		}
		p.w.Edges = append(p.w.Edges, ir.Edge{From: from, To: to, Action: action})
	}
	return nil
}

// wireImplicitEdges adds a sequential default-action edge between each
// consecutive pair of steps, unless the author already supplied an
// explicit ### edges override (detected by a non-empty Edges slice).
func (p *parser) wireImplicitEdges() {
	if len(p.w.Edges) > 0 {
		return
	}
	for i := 0; i+1 < len(p.nodeOrder); i++ {
		p.w.Edges = append(p.w.Edges, ir.Edge{
			From:   p.nodeOrder[i],
			To:     p.nodeOrder[i+1],
			Action: ir.DefaultAction,
		})
	}
}

// normalizeYAML converts map[interface{}]interface{} nodes (which older
// yaml decoders produce) into map[string]interface{} so batch configs
// match the json-compatible shape the rest of the pipeline expects.
// yaml.v3 already decodes into map[string]interface{} for string keys,
// but nested interface{} values are walked here defensively since batch
// blocks may contain arbitrary structure.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
