// Package runconfig loads a mapper run's description — fabric shape, DFG
// shape, and II-sweep options — from a YAML file, the way zeonica's
// core.LoadProgramFileFromYAML loads a per-tile program file.
package runconfig

import (
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
)

var tagTitleCaser = cases.Title(language.English)

// TileOverride customizes a single tile's capability list.
type TileOverride struct {
	X            int      `yaml:"x"`
	Y            int      `yaml:"y"`
	Capabilities []string `yaml:"capabilities"`
	Disabled     bool     `yaml:"disabled"`
}

// FabricConfig describes the CGRA mesh to build.
type FabricConfig struct {
	Rows              int            `yaml:"rows"`
	Cols              int            `yaml:"cols"`
	RegisterCount     int            `yaml:"register_count"`
	CtrlMemSize       int            `yaml:"ctrl_mem_size"`
	FullMesh          bool           `yaml:"full_mesh"`
	Torus             bool           `yaml:"torus"`
	DefaultCapability []string       `yaml:"default_capability"`
	TileOverrides     []TileOverride `yaml:"tile_overrides"`
}

// NodeConfig describes one DFG node.
type NodeConfig struct {
	Name          string `yaml:"name"`
	Tag           string `yaml:"tag"`
	ExecLatency   int    `yaml:"exec_latency"`
	Pipelinable   bool   `yaml:"pipelinable"`
	Critical      bool   `yaml:"critical"`
	Predicater    bool   `yaml:"predicater"`
	Predicatees   []string `yaml:"predicatees"`
}

// EdgeConfig describes one DFG dependency.
type EdgeConfig struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	BackEdge bool   `yaml:"back_edge"`
}

// DFGConfig describes the data-flow graph to build.
type DFGConfig struct {
	Nodes []NodeConfig `yaml:"nodes"`
	Edges []EdgeConfig `yaml:"edges"`
}

// MappingConfig configures the II-sweep driver.
type MappingConfig struct {
	Mode          string `yaml:"mode"` // "heuristic" or "exhaustive"
	StaticElastic bool   `yaml:"static_elastic"`
	SeedII        int    `yaml:"seed_ii"`
	MaxII         int    `yaml:"max_ii"`
}

// RunConfig is the top-level YAML document.
type RunConfig struct {
	Fabric  FabricConfig  `yaml:"fabric"`
	DFG     DFGConfig     `yaml:"dfg"`
	Mapping MappingConfig `yaml:"mapping"`
}

// Load reads and parses a run configuration file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runconfig: read %s: %w", path, err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("runconfig: parse %s: %w", path, err)
	}
	return &cfg, nil
}

var tagByName = map[string]dfg.Tag{
	"load": dfg.Load, "store": dfg.Store, "call": dfg.Call, "return": dfg.Return,
	"add": dfg.Add, "mul": dfg.Mul, "shift": dfg.Shift, "phi": dfg.Phi,
	"sel": dfg.Sel, "cmp": dfg.Cmp, "mac": dfg.Mac, "logic": dfg.Logic,
	"br": dfg.Br, "generic": dfg.Generic,
}

func parseTag(name string) (dfg.Tag, error) {
	normalized := tagTitleCaser.String(name)
	for k, v := range tagByName {
		if tagTitleCaser.String(k) == normalized {
			return v, nil
		}
	}
	return 0, fmt.Errorf("runconfig: unknown DFG tag %q", name)
}

func parseCapabilities(names []string) (fabric.Capability, error) {
	if len(names) == 0 {
		return fabric.AllCapabilities(), nil
	}
	var tags []dfg.Tag
	for _, n := range names {
		t, err := parseTag(n)
		if err != nil {
			return 0, err
		}
		tags = append(tags, t)
	}
	return fabric.CapabilityFor(tags...), nil
}

// BuildFabric constructs the Fabric described by the config.
func (c *FabricConfig) BuildFabric() (*fabric.Fabric, error) {
	defaultCap, err := parseCapabilities(c.DefaultCapability)
	if err != nil {
		return nil, err
	}

	b := fabric.NewBuilder().
		WithSize(c.Cols, c.Rows).
		WithDefaultCapability(defaultCap)

	if c.RegisterCount > 0 {
		b = b.WithRegisterCount(c.RegisterCount)
	}
	if c.CtrlMemSize > 0 {
		b = b.WithCtrlMemSize(c.CtrlMemSize)
	}
	if c.FullMesh {
		b = b.WithFullMesh()
	}
	if c.Torus {
		b = b.WithTorus()
	}

	for _, o := range c.TileOverrides {
		if o.Disabled {
			b = b.DisableTile(o.X, o.Y)
			continue
		}
		cap, err := parseCapabilities(o.Capabilities)
		if err != nil {
			return nil, err
		}
		b = b.WithTileCapability(o.X, o.Y, cap)
	}

	return b.Build(), nil
}

// BuildGraph constructs the Graph described by the config.
func (c *DFGConfig) BuildGraph() (*dfg.Graph, error) {
	builder := dfg.NewBuilder()
	ids := map[string]dfg.NodeID{}

	for _, n := range c.Nodes {
		tag, err := parseTag(n.Tag)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		latency := n.ExecLatency
		if latency <= 0 {
			latency = 1
		}
		var id dfg.NodeID
		builder, id = builder.AddNode(n.Name, tag, latency, n.Pipelinable)
		if n.Critical {
			builder = builder.MarkCritical(id)
		}
		ids[n.Name] = id
	}

	for _, e := range c.Edges {
		from, ok := ids[e.From]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %q", e.From)
		}
		to, ok := ids[e.To]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %q", e.To)
		}
		builder = builder.AddEdge(from, to, e.BackEdge)
	}

	for _, n := range c.Nodes {
		for _, pe := range n.Predicatees {
			builder = builder.SetPredicate(ids[n.Name], ids[pe])
		}
	}

	return builder.Build(), nil
}
