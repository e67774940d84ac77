package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/domain"
	"taskboard/pkg/utils"
)

// BoardInput 创建与更新共用；更新是整体覆盖，description 缺省即清空
type BoardInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=500"`
}

func (in *BoardInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

type BoardService struct {
	store domain.Store
	log   *zap.Logger
}

func NewBoardService(store domain.Store, log *zap.Logger) *BoardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BoardService{store: store, log: log}
}

func (s *BoardService) List(ctx context.Context, caller domain.Identity) ([]domain.Board, error) {
	bs, err := s.store.Boards().ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, domain.Internal("list boards", err)
	}
	return bs, nil
}

func (s *BoardService) Get(ctx context.Context, id string, caller domain.Identity) (*domain.Board, error) {
	return ownedBoard(ctx, s.store, id, caller)
}

// Create 看板与三个默认列在同一事务内创建
func (s *BoardService) Create(ctx context.Context, in BoardInput, caller domain.Identity) (*domain.Board, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	b := &domain.Board{
		ID:          utils.NewID(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     caller.UserID,
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Boards().Create(ctx, b); err != nil {
			return err
		}
		for i, name := range domain.DefaultColumns {
			col := &domain.Column{ID: utils.NewID(), Name: name, Order: i, BoardID: b.ID}
			if err := tx.Columns().Create(ctx, col); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, passthrough("create board", err)
	}
	s.log.Info("board created", zap.String("boardId", b.ID), zap.String("ownerId", b.OwnerID))
	return b, nil
}

func (s *BoardService) Update(ctx context.Context, id string, in BoardInput, caller domain.Identity) (*domain.Board, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	b, err := ownedBoard(ctx, s.store, id, caller)
	if err != nil {
		return nil, err
	}
	b.Name = in.Name
	b.Description = in.Description
	if err := s.store.Boards().Update(ctx, b); err != nil {
		return nil, domain.Internal("update board", err)
	}
	return b, nil
}

// Delete 级联删除列、任务与标签
func (s *BoardService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	if _, err := ownedBoard(ctx, s.store, id, caller); err != nil {
		return err
	}
	if err := s.store.Boards().Delete(ctx, id); err != nil {
		return domain.Internal("delete board", err)
	}
	s.log.Info("board deleted", zap.String("boardId", id), zap.String("ownerId", caller.UserID))
	return nil
}
