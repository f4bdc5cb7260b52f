package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/febriansr/prediction-league/internal/domain/group"
	qb "github.com/febriansr/prediction-league/internal/platform/querybuilder"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) CreateGroup(ctx context.Context, g group.Group) error {
	insertModel := groupInsertModel{
		ID:                 g.ID,
		CreatorUserID:      g.CreatorUserID,
		Name:               g.Name,
		InviteCode:         g.InviteCode,
		Status:             string(g.Status),
		MaxMembers:         g.MaxMembers,
		ScoreOnTheNose:     g.Scoring.OnTheNose,
		ScoreCorrectDiff:   g.Scoring.CorrectDifference,
		ScoreOutcome:       g.Scoring.Outcome,
		NudgeEnabled:       g.Nudge.Enabled,
		NudgeWindowSeconds: int64(g.Nudge.Window / time.Second),
	}
	query, args, err := qb.InsertModel("groups", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create group query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").
		Where(qb.Eq("id", groupID)).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build get group by id query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("get group by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").
		Where(qb.Eq("invite_code", inviteCode)).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build get group by invite code query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("get group by invite code: %w", err)
	}

	return row.toDomain(), true, nil
}

// UpdateStatus moves the group from one status to another. The current
// status is part of the predicate so concurrent transitions cannot both
// apply.
func (r *GroupRepository) UpdateStatus(ctx context.Context, groupID string, from, to group.Status) error {
	query, args, err := qb.Update("groups").
		Set("status", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", groupID),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update group status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update group status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update group status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update group status: not found or status changed concurrently")
	}

	return nil
}

func (r *GroupRepository) ListGroupsByUser(ctx context.Context, userID string) ([]group.Group, error) {
	query, args, err := qb.Select("g.*").
		From("groups g JOIN group_members gm ON gm.group_id = g.id").
		Where(
			qb.Eq("gm.user_id", userID),
			qb.EqLiteral("gm.status", string(group.MemberStatusJoined)),
		).
		OrderBy("g.created_at ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list groups by user query: %w", err)
	}

	var rows []groupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}

	out := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (group.Member, bool, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return group.Member{}, false, fmt.Errorf("build get group member query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Member{}, false, nil
		}
		return group.Member{}, false, fmt.Errorf("get group member: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *GroupRepository) UpsertMember(ctx context.Context, m group.Member) error {
	insertModel := memberInsertModel{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
	query, args, err := qb.InsertModel("group_members", insertModel,
		"ON CONFLICT (group_id, user_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()")
	if err != nil {
		return fmt.Errorf("build upsert group member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert group member: %w", err)
	}

	return nil
}

func (r *GroupRepository) CountJoinedMembers(ctx context.Context, groupID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("group_members").
		Where(
			qb.Eq("group_id", groupID),
			qb.EqLiteral("status", string(group.MemberStatusJoined)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count joined members query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count joined members: %w", err)
	}

	return count, nil
}

func (r *GroupRepository) ListMembersWithUsers(ctx context.Context, groupID string) ([]group.MemberWithUser, error) {
	// LEFT JOIN so a member whose principal was never synced still shows
	// up, with the user id standing in for the username.
	query, args, err := qb.Select(
		"gm.group_id", "gm.user_id", "gm.status", "gm.joined_at", "gm.updated_at",
		"COALESCE(u.username, gm.user_id) AS username",
	).
		From("group_members gm LEFT JOIN users u ON u.id = gm.user_id").
		Where(qb.Eq("gm.group_id", groupID)).
		OrderBy("gm.user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group members query: %w", err)
	}

	var rows []memberWithUserTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}

	out := make([]group.MemberWithUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, group.MemberWithUser{
			Member:   row.memberTableModel.toDomain(),
			Username: row.Username,
		})
	}
	return out, nil
}
