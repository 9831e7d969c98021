package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/database"
	"github.com/Naenyn/FeedbackPortlet/internal/metrics"
	"github.com/Naenyn/FeedbackPortlet/internal/model"
	"github.com/Naenyn/FeedbackPortlet/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrFeedbackNotFound is the cause of a store call whose id matched no row.
var ErrFeedbackNotFound = fmt.Errorf("feedback item: %w", sqlerr.ErrNotFound)

const (
	opStoreFeedback = "store_feedback"
	opListFeedback  = "list_feedback"
	opQueryFeedback = "query_feedback"
	opCountFeedback = "count_feedback"
	opStats         = "stats"
	opStatsByRole   = "stats_by_role"
)

const (
	feedbackColumns = "id, user_id, user_role, feedback_type, feedback, submission_time"

	insertFeedbackSQL = `INSERT INTO feedback_items (user_id, user_role, feedback_type, feedback, submission_time)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	updateFeedbackSQL = `UPDATE feedback_items
SET user_id = $2, user_role = $3, feedback_type = $4, feedback = $5, submission_time = $6
WHERE id = $1`

	listFeedbackSQL = "SELECT " + feedbackColumns + " FROM feedback_items ORDER BY submission_time DESC, id DESC"

	uniqueUsersSQL = "SELECT count(DISTINCT user_id) FROM feedback_items"

	countByTypeSQL = "SELECT feedback_type, count(*) FROM feedback_items GROUP BY feedback_type"

	uniqueUsersByRoleSQL = "SELECT user_role, count(DISTINCT user_id) FROM feedback_items GROUP BY user_role"

	countByRoleAndTypeSQL = "SELECT user_role, feedback_type, count(*) FROM feedback_items GROUP BY user_role, feedback_type"
)

// StoreOptions tunes query behaviour.
type StoreOptions struct {
	ConsistentCommentFilter bool
	// SlowQueryThreshold logs operations slower than this at warn level.
	// Zero disables the check.
	SlowQueryThreshold time.Duration
}

type FeedbackRepository struct {
	db      database.TxStarter
	log     *zerolog.Logger
	opts    StoreOptions
	metrics *metrics.Metrics
}

func NewFeedbackRepository(db database.TxStarter, logger *zerolog.Logger, opts StoreOptions, m *metrics.Metrics) *FeedbackRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FeedbackRepository{
		db:      db,
		log:     logger,
		opts:    opts,
		metrics: m,
	}
}

// run executes fn in a fresh transaction and normalizes its failure into a
// store access error.
func (r *FeedbackRepository) run(ctx context.Context, op string, txOpts pgx.TxOptions, fn func(pgx.Tx) error) error {
	started := time.Now()
	err := sqlerr.Wrap(op, database.WithTx(ctx, r.db, txOpts, fn))
	elapsed := time.Since(started)

	r.metrics.ObserveStoreOperation(op, started, err)

	switch {
	case err != nil:
		r.log.Error().Err(err).
			Str("operation", op).
			Str("code", string(sqlerr.ErrCode(err))).
			Dur("elapsed", elapsed).
			Msg("feedback store operation failed")
	case r.opts.SlowQueryThreshold > 0 && elapsed > r.opts.SlowQueryThreshold:
		r.log.Warn().
			Str("operation", op).
			Dur("elapsed", elapsed).
			Dur("threshold", r.opts.SlowQueryThreshold).
			Msg("slow feedback store operation")
	}

	return err
}

// StoreFeedback inserts item when it has no id yet, then writes every
// mutable column. The new id is assigned to item only once the transaction
// has committed.
func (r *FeedbackRepository) StoreFeedback(ctx context.Context, item *model.FeedbackItem) error {
	var newID int64

	err := r.run(ctx, opStoreFeedback, database.ReadWrite, func(tx pgx.Tx) error {
		id, ok := item.ID.Value()
		if !ok {
			err := tx.QueryRow(ctx, insertFeedbackSQL,
				item.UserID,
				item.UserRole,
				string(item.FeedbackType),
				item.Feedback,
				item.SubmissionTime,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("insert feedback: %w", err)
			}
			newID = id
		}

		tag, err := tx.Exec(ctx, updateFeedbackSQL,
			id,
			item.UserID,
			item.UserRole,
			string(item.FeedbackType),
			item.Feedback,
			item.SubmissionTime,
		)
		if err != nil {
			return fmt.Errorf("update feedback %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("id %d: %w", id, ErrFeedbackNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if item.ID.IsNew() {
		item.ID = model.NewFeedbackID(newID)
	}

	r.log.Debug().Stringer("feedback_id", item.ID).Str("feedback_type", string(item.FeedbackType)).Msg("stored feedback")
	return nil
}

// ListFeedback returns every record, newest first.
func (r *FeedbackRepository) ListFeedback(ctx context.Context) ([]model.FeedbackItem, error) {
	var items []model.FeedbackItem

	err := r.run(ctx, opListFeedback, database.ReadOnly, func(tx pgx.Tx) error {
		var err error
		items, err = queryItems(ctx, tx, listFeedbackSQL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// QueryFeedback returns one page of records, newest first.
//
// The date range is always part of the query: a nil bound is sent as NULL,
// and BETWEEN against NULL matches nothing. An inverted range also matches
// nothing.
func (r *FeedbackRepository) QueryFeedback(ctx context.Context, params model.QueryParameters) ([]model.FeedbackItem, error) {
	var w whereBuilder
	if params.UserRole != "" {
		w.add("user_role = " + w.arg(params.UserRole))
	}
	if params.FeedbackType != "" {
		w.add("feedback_type = " + w.arg(params.FeedbackType))
	}
	if params.CommentsOnlyDisplayed {
		w.add(r.listingCommentPredicate())
	}
	w.add(fmt.Sprintf("submission_time BETWEEN %s AND %s", w.arg(params.StartDisplayDate), w.arg(params.EndDisplayDate)))

	sql := "SELECT " + feedbackColumns + " FROM feedback_items" + w.String() + " ORDER BY submission_time DESC, id DESC"
	if params.StartDisplayCount > 0 {
		sql += " OFFSET " + w.arg(params.StartDisplayCount)
	}
	if params.ItemsDisplayed > 0 {
		sql += " LIMIT " + w.arg(params.ItemsDisplayed)
	}

	var items []model.FeedbackItem
	err := r.run(ctx, opQueryFeedback, database.ReadOnly, func(tx pgx.Tx) error {
		var err error
		items, err = queryItems(ctx, tx, sql, w.args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountFeedback counts the records matching params, ignoring pagination.
// The date range only applies when both bounds are set.
func (r *FeedbackRepository) CountFeedback(ctx context.Context, params model.QueryParameters) (int64, error) {
	var w whereBuilder
	if params.UserRole != "" {
		w.add("user_role = " + w.arg(params.UserRole))
	}
	if params.FeedbackType != "" {
		w.add("feedback_type = " + w.arg(params.FeedbackType))
	}
	if params.CommentsOnlyDisplayed {
		w.add(CommentPredicateCounting)
	}
	if params.HasDateRange() {
		w.add(fmt.Sprintf("submission_time BETWEEN %s AND %s", w.arg(*params.StartDisplayDate), w.arg(*params.EndDisplayDate)))
	}

	sql := "SELECT count(id) FROM feedback_items" + w.String()

	var total int64
	err := r.run(ctx, opCountFeedback, database.ReadOnly, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, w.args...).Scan(&total); err != nil {
			return fmt.Errorf("count feedback: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Stats counts unique users and responses per feedback type across all records.
func (r *FeedbackRepository) Stats(ctx context.Context) (model.OverallFeedbackStats, error) {
	var stats model.OverallFeedbackStats

	err := r.run(ctx, opStats, database.Snapshot, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, uniqueUsersSQL).Scan(&stats.UniqueUsers); err != nil {
			return fmt.Errorf("count unique users: %w", err)
		}

		rows, err := tx.Query(ctx, countByTypeSQL)
		if err != nil {
			return fmt.Errorf("count by feedback type: %w", err)
		}

		var (
			feedbackType string
			count        int64
		)
		_, err = pgx.ForEachRow(rows, []any{&feedbackType, &count}, func() error {
			stats.Add(model.FeedbackType(feedbackType), count)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan feedback type counts: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.OverallFeedbackStats{}, err
	}
	return stats, nil
}

// StatsByRole computes Stats partitioned by user role.
func (r *FeedbackRepository) StatsByRole(ctx context.Context) (model.StatsByRole, error) {
	byRole := model.StatsByRole{}

	err := r.run(ctx, opStatsByRole, database.Snapshot, func(tx pgx.Tx) error {
		var (
			role         string
			feedbackType string
			count        int64
		)

		rows, err := tx.Query(ctx, uniqueUsersByRoleSQL)
		if err != nil {
			return fmt.Errorf("count unique users by role: %w", err)
		}
		_, err = pgx.ForEachRow(rows, []any{&role, &count}, func() error {
			byRole.Entry(role).UniqueUsers = count
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan unique users by role: %w", err)
		}

		rows, err = tx.Query(ctx, countByRoleAndTypeSQL)
		if err != nil {
			return fmt.Errorf("count by role and feedback type: %w", err)
		}
		_, err = pgx.ForEachRow(rows, []any{&role, &feedbackType, &count}, func() error {
			byRole.Entry(role).Add(model.FeedbackType(feedbackType), count)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan role and feedback type counts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return byRole, nil
}

func (r *FeedbackRepository) listingCommentPredicate() string {
	if r.opts.ConsistentCommentFilter {
		return CommentPredicateCounting
	}
	return CommentPredicateListing
}

func queryItems(ctx context.Context, tx pgx.Tx, sql string, args ...any) ([]model.FeedbackItem, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanFeedbackItem)
	if err != nil {
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	if items == nil {
		items = []model.FeedbackItem{}
	}
	return items, nil
}

func scanFeedbackItem(row pgx.CollectableRow) (model.FeedbackItem, error) {
	var (
		item         model.FeedbackItem
		id           int64
		feedbackType string
	)

	err := row.Scan(&id, &item.UserID, &item.UserRole, &feedbackType, &item.Feedback, &item.SubmissionTime)
	if err != nil {
		return model.FeedbackItem{}, err
	}

	item.ID = model.NewFeedbackID(id)
	item.FeedbackType = model.FeedbackType(feedbackType)
	return item, nil
}

// IsNotFound reports whether err was caused by a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, sqlerr.ErrNotFound)
}
