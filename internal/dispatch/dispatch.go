// Package dispatch resolves recommended actions into downstream dispatch
// descriptors and hands them to a sink. Nothing here sends mail or places
// calls; sinks only publish the descriptor.
package dispatch

import (
	"context"
	"errors"

	"github.com/theirongolddev/portsignal/internal/model"
)

// ErrUnknownSink is returned by Open for an unrecognized sink name.
var ErrUnknownSink = errors.New("unknown dispatch sink")

// Descriptor is the side-effect-free instruction handed to a dispatch handler.
// Kind is always one of the quick kinds: draft-email, set-alert,
// add-stakeholder or export-brief.
type Descriptor struct {
	ActionID string           `json:"action_id"`
	Kind     model.ActionKind `json:"kind"`
	Label    string           `json:"label"`
	Context  map[string]any   `json:"context"`
}

// Dispatcher delivers a descriptor to whatever handles the action.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Descriptor) error
}

// Func adapts a plain function to Dispatcher.
type Func func(ctx context.Context, d Descriptor) error

// Dispatch calls f.
func (f Func) Dispatch(ctx context.Context, d Descriptor) error {
	return f(ctx, d)
}

type translator func(a model.RecommendedAction) Descriptor

// translations maps every action kind onto its downstream descriptor.
var translations = map[model.ActionKind]translator{
	model.ActionDraftEmail:     passThrough,
	model.ActionSetAlert:       passThrough,
	model.ActionAddStakeholder: passThrough,
	model.ActionExportBrief:    passThrough,
	model.ActionReview: func(a model.RecommendedAction) Descriptor {
		return Descriptor{
			ActionID: a.ID,
			Kind:     model.ActionExportBrief,
			Label:    a.Title,
			Context: map[string]any{
				"reviewMode":  true,
				"workItemIds": ids(a),
				"title":       a.Title,
			},
		}
	},
	model.ActionEscalate: func(a model.RecommendedAction) Descriptor {
		return Descriptor{
			ActionID: a.ID,
			Kind:     model.ActionDraftEmail,
			Label:    a.Title,
			Context: map[string]any{
				"escalation":  true,
				"urgent":      true,
				"subject":     "URGENT: " + a.Title,
				"context":     a.Description,
				"workItemIds": ids(a),
			},
		}
	},
}

// Translate resolves an action into its dispatch descriptor. Unknown kinds
// fall back to a generic export-brief.
func Translate(a model.RecommendedAction) Descriptor {
	if t, ok := translations[a.Kind]; ok {
		return t(a)
	}
	return Descriptor{
		ActionID: a.ID,
		Kind:     model.ActionExportBrief,
		Label:    a.Title,
		Context: map[string]any{
			"genericAction": true,
			"actionType":    string(a.Kind),
			"title":         a.Title,
		},
	}
}

func passThrough(a model.RecommendedAction) Descriptor {
	ctx := map[string]any{}
	if len(a.AffectedWorkItemIDs) > 0 {
		ctx["workItemIds"] = ids(a)
	}
	return Descriptor{ActionID: a.ID, Kind: a.Kind, Label: a.Title, Context: ctx}
}

func ids(a model.RecommendedAction) []string {
	out := make([]string, len(a.AffectedWorkItemIDs))
	copy(out, a.AffectedWorkItemIDs)
	return out
}
