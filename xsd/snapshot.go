package xsd

import (
	"encoding/json"
	"maps"

	"github.com/rs/zerolog"
)

// A Snapshot is the persistent form of a Registry. Maps are keyed as
// in the Registry; encoding/json writes map keys in sorted order, so
// equal snapshots encode to identical bytes.
type Snapshot struct {
	Types            map[Key]*Type           `json:"types"`
	Attributes       map[Key]*Attribute      `json:"attributes"`
	AttributeGroups  map[Key]*AttributeGroup `json:"attributeGroups"`
	Elements         map[Key]*Element        `json:"elements"`
	ProcessedSchemas map[string]string       `json:"processedSchemas"`
	TypeIDs          map[string]TypeID       `json:"typeIds,omitempty"`
	Groups           map[Key]*Group          `json:"groups,omitempty"`
	PrefixMap        map[string]string       `json:"namespacePrefixMap,omitempty"`
}

// ToSnapshot returns the contents of r. The maps are copies, but the
// declarations they hold are shared with r.
func (r *Registry) ToSnapshot() *Snapshot {
	return &Snapshot{
		Types:            maps.Clone(r.types),
		Attributes:       maps.Clone(r.attributes),
		AttributeGroups:  maps.Clone(r.attributeGroups),
		Elements:         maps.Clone(r.elements),
		ProcessedSchemas: maps.Clone(r.processed),
		TypeIDs:          maps.Clone(r.typeIDs),
		Groups:           maps.Clone(r.groups),
		PrefixMap:        maps.Clone(r.prefixMap),
	}
}

// FromSnapshot replaces the contents of r with those of s. Built-in
// types missing from s are restored.
func (r *Registry) FromSnapshot(s *Snapshot) {
	r.Reset()
	r.MergeSnapshot(s)
}

// MergeSnapshot adds the contents of s to r. Declarations in s replace
// those of r with the same key.
func (r *Registry) MergeSnapshot(s *Snapshot) {
	if s == nil {
		return
	}
	maps.Copy(r.types, s.Types)
	maps.Copy(r.attributes, s.Attributes)
	maps.Copy(r.attributeGroups, s.AttributeGroups)
	maps.Copy(r.elements, s.Elements)
	maps.Copy(r.processed, s.ProcessedSchemas)
	maps.Copy(r.typeIDs, s.TypeIDs)
	maps.Copy(r.groups, s.Groups)
	maps.Copy(r.prefixMap, s.PrefixMap)
	r.byNamespace = nil
	for key, t := range s.Types {
		if t != nil && t.Prefix == SchemaPrefix {
			r.atomic[key] = true
		}
	}
}

// MarshalJSON encodes the snapshot of r.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToSnapshot())
}

// UnmarshalJSON replaces the contents of r with an encoded snapshot.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if r.loader == nil {
		// zero Registry
		r.log = zerolog.Nop()
		r.loader = NewLoader(nil)
		r.prefixFunc = randomPrefix
	}
	r.FromSnapshot(&s)
	return nil
}
