// Package loader reads the survey and engineering JSON documents from disk
// (or any reader) and validates their top-level shape before handing them to
// the dataset wrappers.
package loader

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/spida"
)

// Survey decodes a field-survey export. The document must carry a top-level
// "nodes" object; anything else is rejected before processing starts.
func Survey(r io.Reader, log *zap.Logger) (*katapult.Dataset, error) {
	root, err := decodeObject(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: survey")
	}
	if _, ok := root["nodes"].(map[string]any); !ok {
		return nil, eris.New("loader: survey document has no nodes object")
	}
	return katapult.New(root, log), nil
}

// Engineering decodes an engineering-analysis export. The document must carry
// leads (directly or under a project wrapper).
func Engineering(r io.Reader, log *zap.Logger) (*spida.Dataset, error) {
	root, err := decodeObject(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: engineering")
	}
	// Some exports nest the job under a project wrapper.
	if _, ok := root["leads"].([]any); !ok {
		if project, ok := root["project"].(map[string]any); ok {
			root = project
		}
	}
	if !hasLeads(root) {
		return nil, eris.New("loader: engineering document has no leads")
	}
	return spida.New(root, log), nil
}

// SurveyFile loads and validates a survey document from disk.
func SurveyFile(path string, log *zap.Logger) (*katapult.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close()
	return Survey(f, log)
}

// EngineeringFile loads and validates an engineering document from disk.
func EngineeringFile(path string, log *zap.Logger) (*spida.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close()
	return Engineering(f, log)
}

func decodeObject(r io.Reader) (map[string]any, error) {
	var root map[string]any
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, eris.Wrap(err, "decode document")
	}
	if root == nil {
		return nil, eris.New("document is null")
	}
	return root, nil
}

func hasLeads(root map[string]any) bool {
	leads, ok := root["leads"].([]any)
	return ok && len(leads) > 0
}
