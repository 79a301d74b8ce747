// Package engine reconciles the field-survey and engineering-analysis
// datasets into per-pole make-ready report records: attribute resolution,
// attachment extraction and consolidation, neutral filtering, span and
// midspan processing, and final list assembly.
package engine

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/units"
)

// Options configures one report invocation.
type Options struct {
	// ConflictStrategy resolves pole-attribute disagreements between the
	// two sources.
	ConflictStrategy model.ConflictStrategy

	// HeightStrategy records the caller's height-conflict intent. Height
	// reconciliation itself follows the extractor rules.
	HeightStrategy model.HeightStrategy

	// TargetPoles restricts processing to the listed pole ids (any
	// format; normalized before matching). Empty means all poles.
	TargetPoles []string

	// Strict aborts the whole run on the first pole failure instead of
	// collecting it and moving on.
	Strict bool

	// Workers bounds concurrent per-pole processing. Zero or one keeps
	// processing sequential.
	Workers int
}

// PoleError records a pole that could not be processed.
type PoleError struct {
	NodeID     string `json:"node_id"`
	PoleNumber string `json:"pole_number,omitempty"`
	Err        error  `json:"-"`
	Message    string `json:"error"`
}

// Report is the full reconciliation output: pole records in engineering
// visitation order, plus any per-pole failures skipped along the way.
type Report struct {
	Poles  []model.Pole `json:"poles"`
	Errors []PoleError  `json:"errors,omitempty"`
}

// Processor runs the reconciliation pipeline.
type Processor struct {
	log  *zap.Logger
	opts Options
}

// New builds a Processor. log may not be nil.
func New(log *zap.Logger, opts Options) *Processor {
	if opts.ConflictStrategy == "" {
		opts.ConflictStrategy = model.PreferEngineering
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Processor{log: log, opts: opts}
}

// poleTask is one pole node queued for processing.
type poleTask struct {
	nodeID string
	node   map[string]any
}

// Process reconciles the two datasets. The engineering dataset may be nil,
// in which case the report is survey-only: no attribute refinement, no
// proposed heights, no backspans, and every pole non-primary.
func (p *Processor) Process(ctx context.Context, survey *katapult.Dataset, eng *spida.Dataset) (*Report, error) {
	if survey == nil {
		return nil, eris.New("engine: survey dataset is required")
	}
	seq := newSequence(eng)

	targets := map[string]struct{}{}
	for _, t := range p.opts.TargetPoles {
		if norm := units.NormalizePoleID(t); norm != "" {
			targets[norm] = struct{}{}
		}
	}

	var tasks []poleTask
	nodes := survey.Nodes()
	for _, nodeID := range attrval.SortedKeys(nodes) {
		node, ok := nodes[nodeID].(map[string]any)
		if !ok || !katapult.IsPoleNode(node) {
			continue
		}
		poleNumber := katapult.PoleNumber(node)
		if poleNumber == "" {
			p.log.Debug("engine: skipping pole node without pole number",
				zap.String("node_id", nodeID))
			continue
		}
		if len(targets) > 0 {
			if _, want := targets[units.NormalizePoleID(poleNumber)]; !want {
				continue
			}
		}
		tasks = append(tasks, poleTask{nodeID: nodeID, node: node})
	}

	poles := make([]*model.Pole, len(tasks))
	errs := make([]error, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pole, err := p.processPole(survey, eng, seq, task.nodeID, task.node)
			if err != nil {
				if p.opts.Strict {
					return eris.Wrapf(err, "engine: pole node %s", task.nodeID)
				}
				p.log.Error("engine: skipping pole",
					zap.String("node_id", task.nodeID), zap.Error(err))
				errs[i] = err
				return nil
			}
			poles[i] = pole
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, pole := range poles {
		if pole != nil {
			report.Poles = append(report.Poles, *pole)
			continue
		}
		if errs[i] != nil {
			report.Errors = append(report.Errors, PoleError{
				NodeID:     tasks[i].nodeID,
				PoleNumber: katapult.PoleNumber(tasks[i].node),
				Err:        errs[i],
				Message:    errs[i].Error(),
			})
		}
	}

	// Engineering visitation order governs the report; poles unknown to
	// the engineering data keep their relative scan order at the end.
	sort.SliceStable(report.Poles, func(i, j int) bool {
		oi, oj := seq.orderOf(report.Poles[i].NormPoleNumber), seq.orderOf(report.Poles[j].NormPoleNumber)
		if oi == 0 {
			oi = int(^uint(0) >> 1)
		}
		if oj == 0 {
			oj = int(^uint(0) >> 1)
		}
		return oi < oj
	})
	return report, nil
}

// processPole runs the full per-pole pipeline for one survey node.
func (p *Processor) processPole(survey *katapult.Dataset, eng *spida.Dataset, seq *spidaSequence, nodeID string, node map[string]any) (*model.Pole, error) {
	pa := surveyPoleAttributes(node)

	var loc map[string]any
	if eng != nil {
		loc = eng.Location(pa.NormPoleNumber)
		pa = resolveAttributes(pa, loc, eng, p.opts.ConflictStrategy)
	}

	surveyAtt := p.surveyAttachments(survey, node)
	engAtt := p.engineeringAttachments(loc)
	attachers := consolidate(engAtt, surveyAtt)
	owners := ownersWithChanges(attachers)

	spans := p.processSpans(survey, nodeID, pa.PoleNumber, seq)

	neutrals := p.surveyNeutrals(survey, node)
	neutrals = append(neutrals, p.engineeringNeutrals(loc)...)
	governing := highestNeutral(neutrals)
	below := p.filterBelowNeutral(pa.PoleNumber, attachers, governing)

	riserCount, guyCount := countProposedRiserGuy(node, loc, pa.Notes)

	midspanProposed := p.calculateMidspanProposed(survey, nodeID, owners, attachers)
	applyMidspanValues(attachers, midspanProposed)
	applyMidspanValues(below, midspanProposed)

	final := buildFinalAttachers(below, spans.References, spans.Backspan)

	pole := &model.Pole{
		PoleNumber:              pa.PoleNumber,
		NormPoleNumber:          pa.NormPoleNumber,
		Owner:                   orNA(pa.Owner),
		Structure:               orNA(pa.Structure),
		ConstructionGrade:       orNA(pa.ConstructionGrade),
		PLAPercentage:           orNA(pa.PLAPercentage),
		ProposedRiser:           formatYesNo(riserCount),
		ProposedGuy:             formatYesNo(guyCount),
		LowestMidspanComm:       spans.LowestComm,
		LowestMidspanElectrical: spans.LowestElectrical,
		FromPole:                spans.FromPole,
		ToPole:                  spans.ToPole,
		MidspanProposed:         midspanProposed,
		Attachers:               final,
		BelowNeutral:            below,
		Connections:             spans.Connections,
		MidspanByPole:           p.lowestMidspanHeights(survey, nodeID),
		Action:                  determineAction(final),
		Status:                  determineStatus(pa.Notes, pa.PLAPercentage),
		Latitude:                pa.Latitude,
		Longitude:               pa.Longitude,
		OperationNum:            seq.orderOf(pa.NormPoleNumber),
		IsPrimary:               loc != nil,
		MakeReadyNotes:          pa.Notes,
	}
	return pole, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
