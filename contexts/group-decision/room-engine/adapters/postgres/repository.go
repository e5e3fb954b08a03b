package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
	"quorum/contexts/group-decision/room-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the room-engine tables, including the unique
// indexes on rooms.code and (votes.room_id, votes.voter_id) that back the
// join-code and one-vote-per-participant invariants.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&roomModel{},
		&roomParticipantModel{},
		&optionModel{},
		&voteModel{},
	)
}

func (r *Repository) InsertRoom(ctx context.Context, room entities.Room) error {
	row := roomModelFromEntity(room)
	participants := make([]roomParticipantModel, 0, len(room.Participants))
	for _, userID := range room.Participants {
		participants = append(participants, roomParticipantModel{
			RoomID:   row.ID,
			UserID:   strings.TrimSpace(userID),
			JoinedAt: row.CreatedAt,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(participants) == 0 {
			return nil
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrCodeCollision
		}
		return r.logError("room_repo_insert_room_failed", err,
			"room_id", room.RoomID,
			"room_code", room.Code,
		)
	}
	return nil
}

func (r *Repository) SaveRoom(ctx context.Context, room entities.Room) error {
	result := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id = ?", strings.TrimSpace(room.RoomID)).
		Updates(map[string]any{
			"state":             string(room.State),
			"final_option":      room.FinalOption,
			"tiebreaker_method": room.TiebreakerMethod,
			"updated_at":        room.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("room_repo_save_room_failed", result.Error, "room_id", room.RoomID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoomNotFound
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID string) (entities.Room, error) {
	var row roomModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(roomID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Room{}, domainerrors.ErrRoomNotFound
		}
		return entities.Room{}, r.logError("room_repo_get_room_failed", err, "room_id", strings.TrimSpace(roomID))
	}
	participants, err := r.participantsFor(ctx, row.ID)
	if err != nil {
		return entities.Room{}, err
	}
	return row.toEntity(participants), nil
}

func (r *Repository) GetRoomByCode(ctx context.Context, code string) (entities.Room, error) {
	var row roomModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Room{}, domainerrors.ErrRoomNotFound
		}
		return entities.Room{}, r.logError("room_repo_get_room_by_code_failed", err, "room_code", strings.TrimSpace(code))
	}
	participants, err := r.participantsFor(ctx, row.ID)
	if err != nil {
		return entities.Room{}, err
	}
	return row.toEntity(participants), nil
}

func (r *Repository) ListRoomsByParticipant(ctx context.Context, userID string) ([]entities.Room, error) {
	var rows []roomModel
	err := r.db.WithContext(ctx).
		Table("rooms AS r").
		Select("r.*").
		Joins("JOIN room_participants AS p ON p.room_id = r.id").
		Where("p.user_id = ?", strings.TrimSpace(userID)).
		Order("r.created_at DESC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("room_repo_list_rooms_by_participant_failed", err, "user_id", strings.TrimSpace(userID))
	}

	items := make([]entities.Room, 0, len(rows))
	for _, row := range rows {
		participants, err := r.participantsFor(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, row.toEntity(participants))
	}
	return items, nil
}

func (r *Repository) AddParticipant(ctx context.Context, roomID string, userID string) error {
	row := roomParticipantModel{
		RoomID:   strings.TrimSpace(roomID),
		UserID:   strings.TrimSpace(userID),
		JoinedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return r.logError("room_repo_add_participant_failed", err,
			"room_id", row.RoomID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) DeleteRoomCascade(ctx context.Context, roomID string) error {
	roomID = strings.TrimSpace(roomID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&optionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&roomParticipantModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", roomID).Delete(&roomModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRoomNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRoomNotFound) {
			return err
		}
		return r.logError("room_repo_delete_room_cascade_failed", err, "room_id", roomID)
	}
	return nil
}

func (r *Repository) InsertOption(ctx context.Context, option entities.Option) error {
	row := optionModelFromEntity(option)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("room_repo_insert_option_failed", err,
			"option_id", option.OptionID,
			"room_id", option.RoomID,
		)
	}
	return nil
}

func (r *Repository) GetOption(ctx context.Context, optionID string) (entities.Option, error) {
	var row optionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(optionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Option{}, domainerrors.ErrOptionNotFound
		}
		return entities.Option{}, r.logError("room_repo_get_option_failed", err, "option_id", strings.TrimSpace(optionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListOptionsByRoom(ctx context.Context, roomID string) ([]entities.Option, error) {
	var rows []optionModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", strings.TrimSpace(roomID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("room_repo_list_options_failed", err, "room_id", strings.TrimSpace(roomID))
	}
	items := make([]entities.Option, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("room_repo_insert_vote_failed", err,
			"vote_id", vote.VoteID,
			"room_id", vote.RoomID,
			"voter_id", vote.VoterID,
		)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, roomID string, voterID string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("room_id = ?", strings.TrimSpace(roomID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Count(&total).
		Error
	if err != nil {
		return false, r.logError("room_repo_has_voted_failed", err,
			"room_id", strings.TrimSpace(roomID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return total > 0, nil
}

func (r *Repository) CountVotesByOption(ctx context.Context, roomID string) ([]ports.OptionCount, error) {
	var rows []optionCountRow
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("option_id, COUNT(*) AS votes").
		Where("room_id = ?", strings.TrimSpace(roomID)).
		Group("option_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("room_repo_count_votes_failed", err, "room_id", strings.TrimSpace(roomID))
	}
	items := make([]ports.OptionCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OptionCount{
			OptionID: row.OptionID,
			Votes:    row.Votes,
		})
	}
	return items, nil
}

func (r *Repository) participantsFor(ctx context.Context, roomID string) ([]string, error) {
	var rows []roomParticipantModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("room_repo_list_participants_failed", err, "room_id", roomID)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.UserID)
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "group-decision/room-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("room repository operation failed", fields...)
	return err
}

type roomModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Code             string    `gorm:"column:code;uniqueIndex"`
	Title            string    `gorm:"column:title"`
	Description      string    `gorm:"column:description"`
	Capacity         int       `gorm:"column:capacity"`
	CreatorID        string    `gorm:"column:creator_id"`
	State            string    `gorm:"column:state"`
	FinalOption      string    `gorm:"column:final_option"`
	TiebreakerMethod string    `gorm:"column:tiebreaker_method"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string {
	return "rooms"
}

func roomModelFromEntity(room entities.Room) roomModel {
	row := roomModel{
		ID:               strings.TrimSpace(room.RoomID),
		Code:             strings.TrimSpace(room.Code),
		Title:            strings.TrimSpace(room.Title),
		Description:      strings.TrimSpace(room.Description),
		Capacity:         room.Capacity,
		CreatorID:        strings.TrimSpace(room.CreatorID),
		State:            string(room.State),
		FinalOption:      room.FinalOption,
		TiebreakerMethod: room.TiebreakerMethod,
		CreatedAt:        room.CreatedAt.UTC(),
		UpdatedAt:        room.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m roomModel) toEntity(participants []string) entities.Room {
	return entities.Room{
		RoomID:           m.ID,
		Code:             m.Code,
		Title:            m.Title,
		Description:      m.Description,
		Capacity:         m.Capacity,
		CreatorID:        m.CreatorID,
		Participants:     participants,
		State:            entities.RoomState(m.State),
		FinalOption:      m.FinalOption,
		TiebreakerMethod: m.TiebreakerMethod,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type roomParticipantModel struct {
	RoomID   string    `gorm:"column:room_id;primaryKey"`
	UserID   string    `gorm:"column:user_id;primaryKey"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

func (roomParticipantModel) TableName() string {
	return "room_participants"
}

type optionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	RoomID      string    `gorm:"column:room_id;index"`
	Text        string    `gorm:"column:text"`
	SubmittedBy string    `gorm:"column:submitted_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (optionModel) TableName() string {
	return "options"
}

func optionModelFromEntity(option entities.Option) optionModel {
	row := optionModel{
		ID:          strings.TrimSpace(option.OptionID),
		RoomID:      strings.TrimSpace(option.RoomID),
		Text:        option.Text,
		SubmittedBy: strings.TrimSpace(option.SubmittedBy),
		CreatedAt:   option.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m optionModel) toEntity() entities.Option {
	return entities.Option{
		OptionID:    m.ID,
		RoomID:      m.RoomID,
		Text:        m.Text,
		SubmittedBy: m.SubmittedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	RoomID    string    `gorm:"column:room_id;uniqueIndex:idx_votes_room_voter"`
	OptionID  string    `gorm:"column:option_id;index"`
	VoterID   string    `gorm:"column:voter_id;uniqueIndex:idx_votes_room_voter"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		RoomID:    strings.TrimSpace(vote.RoomID),
		OptionID:  strings.TrimSpace(vote.OptionID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		CreatedAt: vote.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

type optionCountRow struct {
	OptionID string `gorm:"column:option_id"`
	Votes    int    `gorm:"column:votes"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// The sqlite driver used for local development reports constraint
	// failures through gorm's translated error.
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var _ ports.RoomRepository = (*Repository)(nil)
var _ ports.OptionRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
