// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topicmodel adapts the output of an external topic model. Topic
// discovery itself happens elsewhere; this package only reads its results.
package topicmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Model is the topic-model collaborator consumed by theme mapping.
// Topics returns every topic the model knows, including the outlier topic
// when the model reports one.
type Model interface {
	Topics() []types.TopicInfo
}

// Static is an in-memory Model.
type Static []types.TopicInfo

// Topics returns the topics in ascending id order.
func (s Static) Topics() []types.TopicInfo {
	out := make([]types.TopicInfo, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FileModel is a Model loaded from a topic-model output file.
type FileModel struct {
	Path   string
	topics Static
}

// Topics returns the loaded topics in ascending id order.
func (m *FileModel) Topics() []types.TopicInfo { return m.topics.Topics() }

// fileFormat is the on-disk layout:
//
//	{"topics": [{"id": 0, "count": 12, "keywords": [["radar", 0.12], ...]}]}
type fileFormat struct {
	Topics []fileTopic `json:"topics" yaml:"topics"`
}

type fileTopic struct {
	ID       *int          `json:"id" yaml:"id"`
	Count    int           `json:"count" yaml:"count"`
	Keywords []pairKeyword `json:"keywords" yaml:"keywords"`
}

// pairKeyword decodes a [word, weight] pair.
type pairKeyword types.TopicKeyword

func (k *pairKeyword) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("keyword must be a [word, weight] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("keyword pair has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Word); err != nil {
		return fmt.Errorf("keyword word: %w", err)
	}
	if err := json.Unmarshal(pair[1], &k.Weight); err != nil {
		return fmt.Errorf("keyword %q weight: %w", k.Word, err)
	}
	return nil
}

func (k *pairKeyword) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: keyword must be a [word, weight] pair", node.Line)
	}
	if err := node.Content[0].Decode(&k.Word); err != nil {
		return fmt.Errorf("keyword word: %w", err)
	}
	if err := node.Content[1].Decode(&k.Weight); err != nil {
		return fmt.Errorf("keyword %q weight: %w", k.Word, err)
	}
	return nil
}

func (k pairKeyword) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{k.Word, k.Weight})
}

func (k pairKeyword) MarshalYAML() (interface{}, error) {
	return []interface{}{k.Word, k.Weight}, nil
}

// Load reads a topic-model file. The format follows the extension: .json,
// .yaml, or .yml.
func Load(path string) (*FileModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topic model: %w", err)
	}

	var ff fileFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &ff)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ff)
	default:
		return nil, fmt.Errorf("unsupported topic model format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing topic model %s: %w", path, err)
	}

	m := &FileModel{Path: path, topics: make(Static, 0, len(ff.Topics))}
	seen := make(map[int]bool, len(ff.Topics))
	for i, ft := range ff.Topics {
		if ft.ID == nil {
			return nil, fmt.Errorf("parsing topic model %s: topic %d has no id", path, i)
		}
		if seen[*ft.ID] {
			return nil, fmt.Errorf("parsing topic model %s: duplicate topic id %d", path, *ft.ID)
		}
		seen[*ft.ID] = true
		if ft.Count < 0 {
			return nil, fmt.Errorf("parsing topic model %s: topic %d has negative count", path, *ft.ID)
		}

		info := types.TopicInfo{ID: *ft.ID, Count: ft.Count}
		for _, kw := range ft.Keywords {
			info.Keywords = append(info.Keywords, types.TopicKeyword(kw))
		}
		m.topics = append(m.topics, info)
	}
	return m, nil
}

// Write saves topics in the file format Load reads.
func Write(path string, topics []types.TopicInfo) error {
	ff := fileFormat{Topics: make([]fileTopic, len(topics))}
	for i, t := range topics {
		id := t.ID
		ft := fileTopic{ID: &id, Count: t.Count, Keywords: make([]pairKeyword, len(t.Keywords))}
		for j, kw := range t.Keywords {
			ft.Keywords[j] = pairKeyword(kw)
		}
		ff.Topics[i] = ft
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&ff)
	default:
		data, err = json.MarshalIndent(&ff, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling topic model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
