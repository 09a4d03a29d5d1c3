package config

import (
	"strings"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// decodeExports converts an inline exports fixture into an export map.
// Mapping keys keep their order and duplicates surface as malformed maps.
func decodeExports(n *yaml.Node) (domain.ExportMap, error) {
	root, err := decodeNode(n, nil)
	if err != nil {
		return domain.ExportMap{}, err
	}
	return domain.ExportMapFrom(root)
}

func decodeNode(n *yaml.Node, path []string) (domain.ConditionNode, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias, path)
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return domain.ConditionNode{}, malformed("target must be a string", path, n)
		}
		return domain.Target(n.Value), nil
	case yaml.MappingNode:
		entries := make([]domain.ConditionEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child, err := decodeNode(n.Content[i+1], append(path, key))
			if err != nil {
				return domain.ConditionNode{}, err
			}
			entries = append(entries, domain.When(key, child))
		}
		return domain.Conditions(entries...), nil
	case yaml.SequenceNode:
		return domain.ConditionNode{}, malformed("fallback arrays are not supported", path, n)
	default:
		return domain.ConditionNode{}, malformed("unexpected node", path, n)
	}
}

func malformed(reason string, path []string, n *yaml.Node) error {
	err := zerr.Wrap(domain.ErrMalformedExportMap, reason)
	if len(path) > 0 {
		err = zerr.With(err, "path", strings.Join(path, "."))
	}
	return zerr.With(err, "line", n.Line)
}
