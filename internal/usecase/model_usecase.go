package usecase

import (
	"context"
	"fmt"
	"log"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
	"GeoScan-App/internal/domain/service"
)

type ModelUseCase interface {
	// RegisterModel はモデルを検証してレジストリに登録する（uidが空なら生成）
	RegisterModel(ctx context.Context, req *model.RegisterModelRequest) (*model.GeoScanModel, error)

	// GetModel は指定されたuidのモデルを取得する
	GetModel(ctx context.Context, uid string) (*model.GeoScanModel, error)

	// ListModels は登録済みモデルの概要一覧を取得する
	ListModels(ctx context.Context) ([]model.ModelSummary, error)

	// DeleteModel は指定されたuidのモデルを削除する
	DeleteModel(ctx context.Context, uid string) error

	// ExportModel はモデルをファイルアーティファクトとして書き出す
	ExportModel(ctx context.Context, uid string, path string, overwrite bool) error

	// ImportModel はファイルアーティファクトからモデルを読み込んでレジストリに登録する
	ImportModel(ctx context.Context, path string) (*model.GeoScanModel, error)

	// GetTiles はモデルのタイルテーブルを展開して返す（layers < 0 でモデル設定値を使用）
	GetTiles(ctx context.Context, uid string, layers int) ([]model.Tile, error)
}

// modelUseCaseImpl はModelUseCaseの実装
type modelUseCaseImpl struct {
	registry  repository.ModelRegistryRepository
	store     repository.ModelStoreRepository
	precision *service.PrecisionService
	tiles     *service.TileService
}

// NewModelUseCase は新しいModelUseCaseインスタンスを作成
func NewModelUseCase(
	registry repository.ModelRegistryRepository,
	store repository.ModelStoreRepository,
	precision *service.PrecisionService,
	tiles *service.TileService,
) ModelUseCase {
	return &modelUseCaseImpl{
		registry:  registry,
		store:     store,
		precision: precision,
		tiles:     tiles,
	}
}

func (u *modelUseCaseImpl) RegisterModel(ctx context.Context, req *model.RegisterModelRequest) (*model.GeoScanModel, error) {
	params := model.GeoScanParams{
		Epsilon:       req.Epsilon,
		Layers:        req.Layers,
		PredictionCol: req.PredictionCol,
		LatitudeCol:   req.LatitudeCol,
		LongitudeCol:  req.LongitudeCol,
	}
	if params.PredictionCol == "" {
		params.PredictionCol = model.DefaultPredictionCol
	}
	if params.LatitudeCol == "" {
		params.LatitudeCol = model.DefaultLatitudeCol
	}
	if params.LongitudeCol == "" {
		params.LongitudeCol = model.DefaultLongitudeCol
	}
	if params.Layers < 0 {
		return nil, fmt.Errorf("layersは0以上が必要です (layers=%d)", params.Layers)
	}

	// epsilonが解像度を導出できることを登録時点で確認する
	resolution, err := u.precision.SelectPrecision(params.Epsilon)
	if err != nil {
		return nil, err
	}

	clusters := req.Clusters
	if clusters == nil {
		clusters = []model.Cluster{}
	}
	m := model.NewGeoScanModel(req.UID, &model.Shape{Clusters: clusters}, params)

	// タイル展開可能な形状であることも確認する（ID重複・頂点不足の検出）
	if _, err := u.tiles.ExpandTiles(ctx, m.Shape.Clusters, resolution, 0); err != nil {
		return nil, err
	}

	if err := u.registry.Save(ctx, m); err != nil {
		return nil, err
	}

	log.Printf("✅ モデル登録完了: %s (epsilon=%gm, resolution=%d, %dクラスタ)",
		m.UID, params.Epsilon, resolution, len(m.Shape.Clusters))
	return m, nil
}

func (u *modelUseCaseImpl) GetModel(ctx context.Context, uid string) (*model.GeoScanModel, error) {
	return u.registry.GetByUID(ctx, uid)
}

func (u *modelUseCaseImpl) ListModels(ctx context.Context) ([]model.ModelSummary, error) {
	return u.registry.GetAll(ctx)
}

func (u *modelUseCaseImpl) DeleteModel(ctx context.Context, uid string) error {
	if _, err := u.registry.GetByUID(ctx, uid); err != nil {
		return err
	}
	return u.registry.Delete(ctx, uid)
}

func (u *modelUseCaseImpl) ExportModel(ctx context.Context, uid string, path string, overwrite bool) error {
	m, err := u.registry.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	return u.store.Save(ctx, m, path, overwrite)
}

func (u *modelUseCaseImpl) ImportModel(ctx context.Context, path string) (*model.GeoScanModel, error) {
	m, err := u.store.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := u.registry.Save(ctx, m); err != nil {
		return nil, err
	}
	log.Printf("✅ モデルインポート完了: %s ← %s", m.UID, path)
	return m, nil
}

func (u *modelUseCaseImpl) GetTiles(ctx context.Context, uid string, layers int) ([]model.Tile, error) {
	m, err := u.registry.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	resolution, err := u.precision.SelectPrecision(m.Params.Epsilon)
	if err != nil {
		return nil, err
	}

	if layers < 0 {
		layers = m.Params.Layers
	}
	return u.tiles.ExpandTiles(ctx, m.Shape.Clusters, resolution, layers)
}
