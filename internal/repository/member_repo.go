package repository

import (
	"context"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

type CreateMemberInput struct {
	FullName string
	Email    *string
	QRToken  string
}

type MemberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	query := `
		INSERT INTO members (full_name, email, qr_token, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING id, full_name, email, qr_token, is_active, created_at, updated_at
	`
	var member models.Member
	err := r.db.QueryRow(ctx, query, input.FullName, input.Email, input.QRToken).Scan(
		&member.ID,
		&member.FullName,
		&member.Email,
		&member.QRToken,
		&member.IsActive,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, memberID int64) (*models.Member, error) {
	query := `
		SELECT id, full_name, email, qr_token, is_active, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	return r.scanOne(ctx, query, memberID)
}

func (r *MemberRepository) GetByQRToken(ctx context.Context, qrToken string) (*models.Member, error) {
	query := `
		SELECT id, full_name, email, qr_token, is_active, created_at, updated_at
		FROM members
		WHERE qr_token = $1
	`
	return r.scanOne(ctx, query, qrToken)
}

func (r *MemberRepository) List(ctx context.Context, offset, limit int) ([]models.Member, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, full_name, email, qr_token, is_active, created_at, updated_at
		FROM members
		ORDER BY full_name ASC, id ASC
		OFFSET $1 LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(
			&member.ID,
			&member.FullName,
			&member.Email,
			&member.QRToken,
			&member.IsActive,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *MemberRepository) SetActive(ctx context.Context, memberID int64, active bool) (*models.Member, error) {
	query := `
		UPDATE members
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, email, qr_token, is_active, created_at, updated_at
	`
	return r.scanOne(ctx, query, memberID, active)
}

func (r *MemberRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	var member models.Member
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&member.ID,
		&member.FullName,
		&member.Email,
		&member.QRToken,
		&member.IsActive,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
