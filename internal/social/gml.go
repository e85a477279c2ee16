package social

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The persisted graph uses GML, a line-oriented human-readable graph
// description. The file is a build cache: deleting it forces a rebuild on
// the next load. No maintained Go GML codec exists, so the subset used
// here (directed flag, node id/label/attributes, edge source/target/weight)
// is read and written directly.

// WriteGML writes the graph to path.
func (g *Graph) WriteGML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "graph [")
	fmt.Fprintln(w, "  directed 1")

	index := make(map[string]int, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		index[id] = i
		attrs := g.nodes[id]
		fmt.Fprintln(w, "  node [")
		fmt.Fprintf(w, "    id %d\n", i)
		fmt.Fprintf(w, "    label %s\n", quoteGML(id))
		fmt.Fprintf(w, "    category %s\n", quoteGML(attrs.Category))
		fmt.Fprintf(w, "    admin %s\n", quoteGML(attrs.Admin))
		fmt.Fprintf(w, "    subdistrict %s\n", quoteGML(attrs.Subdistrict))
		fmt.Fprintf(w, "    poi %s\n", quoteGML(attrs.POI))
		fmt.Fprintf(w, "    street %s\n", quoteGML(attrs.Street))
		fmt.Fprintln(w, "  ]")
	}

	for _, src := range g.nodeOrder {
		for _, e := range g.adj[src] {
			fmt.Fprintln(w, "  edge [")
			fmt.Fprintf(w, "    source %d\n", index[src])
			fmt.Fprintf(w, "    target %d\n", index[e.dst])
			fmt.Fprintf(w, "    weight %d\n", e.weight)
			fmt.Fprintln(w, "  ]")
		}
	}
	fmt.Fprintln(w, "]")
	return w.Flush()
}

// ReadGML loads a graph previously written by WriteGML. Node and edge order
// in the file becomes insertion order, so retrieval ordering survives a
// save/load cycle.
func ReadGML(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseGML(f)
}

func parseGML(r io.Reader) (*Graph, error) {
	g := NewGraph()
	labels := make(map[int]string)

	type record map[string]string
	var section string // "node" or "edge"
	var fields record
	var pendingEdges []record

	flush := func() error {
		if fields == nil {
			return nil
		}
		switch section {
		case "node":
			id, err := strconv.Atoi(fields["id"])
			if err != nil {
				return fmt.Errorf("node id %q: %w", fields["id"], err)
			}
			label := fields["label"]
			labels[id] = label
			g.SetNode(label, NodeAttrs{
				Category:    fields["category"],
				Admin:       fields["admin"],
				Subdistrict: fields["subdistrict"],
				POI:         fields["poi"],
				Street:      fields["street"],
			})
		case "edge":
			// Edges may reference nodes not yet declared; resolve after
			// the full file is read.
			pendingEdges = append(pendingEdges, fields)
		}
		fields = nil
		section = ""
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	depth := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "node [":
			section, fields = "node", record{}
			depth++
		case line == "edge [":
			section, fields = "edge", record{}
			depth++
		case strings.HasSuffix(line, "["):
			depth++
		case line == "]":
			if fields != nil {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			depth--
		default:
			key, value, ok := strings.Cut(line, " ")
			if !ok {
				continue
			}
			value = unquoteGML(strings.TrimSpace(value))
			if fields != nil {
				fields[key] = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in graph file")
	}

	for _, e := range pendingEdges {
		src, err := strconv.Atoi(e["source"])
		if err != nil {
			return nil, fmt.Errorf("edge source %q: %w", e["source"], err)
		}
		dst, err := strconv.Atoi(e["target"])
		if err != nil {
			return nil, fmt.Errorf("edge target %q: %w", e["target"], err)
		}
		weight := 1
		if wv, ok := e["weight"]; ok {
			if weight, err = strconv.Atoi(wv); err != nil {
				return nil, fmt.Errorf("edge weight %q: %w", wv, err)
			}
		}
		srcLabel, ok := labels[src]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %d", src)
		}
		dstLabel, ok := labels[dst]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %d", dst)
		}
		g.addWeighted(srcLabel, dstLabel, weight)
	}
	return g, nil
}

func quoteGML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func unquoteGML(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, `\"`, `"`)
		s = strings.ReplaceAll(s, `\\`, `\`)
	}
	return s
}
