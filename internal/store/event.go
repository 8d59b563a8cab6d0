package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// EventStore implements EventRepo over the append-only answer_events table.
// The auto-increment id gives a total order across all users.
type EventStore struct {
	conn
}

var _ EventRepo = (*EventStore)(nil)

// Append records one graded answer.
func (r *EventStore) Append(ctx context.Context, e AnswerEvent) error {
	q := r.b().Insert(tAnswerEvents).
		Columns("user_id", "question_id", "concept_id", "answer", "correct", "response_ms", "created_at").
		Values(e.UserID, e.QuestionID, e.ConceptID, e.Answer, e.Correct, e.ResponseMs, utc(e.CreatedAt))
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("append answer event: %w", err)
	}
	return nil
}

// Recent returns a user's answers, newest first.
func (r *EventStore) Recent(ctx context.Context, userID int64, opts QueryOpts) ([]AnswerEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", utc(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", utc(opts.To)))
	}

	q := r.b().Select("id", "user_id", "question_id", "concept_id", "answer", "correct", "response_ms", "created_at").
		From(r.b().Table(tAnswerEvents)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		q.Limit(opts.Limit)
	}

	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerEvent
	for rows.Next() {
		var e AnswerEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.QuestionID, &e.ConceptID, &e.Answer, &e.Correct,
			&e.ResponseMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
