package stats

import (
	"context"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/store"
)

// HistoryReport contains precomputed data for the stats browser.
type HistoryReport struct {
	Sessions []model.SessionAggregate
	Summary  HistorySummary
}

// BuildReport loads stored sessions matching cfg.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (HistoryReport, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return HistoryReport{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return HistoryReport{
		Sessions: sessions,
		Summary:  Summarize(sessions),
	}, nil
}

// StoredSessionReport aggregates the trials of one stored session. An empty
// id selects the most recent session; ok is false when there is none.
func StoredSessionReport(ctx context.Context, st *store.Store, id string) (report Report, sessionID string, ok bool, err error) {
	if id == "" {
		id, ok, err = st.LatestSessionID(ctx)
		if err != nil || !ok {
			return Report{}, "", false, err
		}
	}
	trials, err := st.ListTrials(ctx, id)
	if err != nil {
		return Report{}, "", false, err
	}
	if len(trials) == 0 {
		return Report{}, id, false, nil
	}
	return Aggregate(trials), id, true, nil
}
