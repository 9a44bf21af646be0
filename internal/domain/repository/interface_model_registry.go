package repository

import (
	"context"

	"GeoScan-App/internal/domain/model"
)

// ModelRegistryRepository は学習済みモデルの登録・取得を担うリポジトリインターフェース
type ModelRegistryRepository interface {
	Save(ctx context.Context, m *model.GeoScanModel) error
	GetByUID(ctx context.Context, uid string) (*model.GeoScanModel, error)
	GetAll(ctx context.Context) ([]model.ModelSummary, error)
	Delete(ctx context.Context, uid string) error
}

// ModelStoreRepository はモデルのアーティファクト永続化（save/load）を担うインターフェース
// pathの下に metadata と data の2アーティファクトを配置する
type ModelStoreRepository interface {
	// Save はモデルをpath配下に書き出す。overwriteがfalseで既存パスの場合は失敗する
	Save(ctx context.Context, m *model.GeoScanModel, path string, overwrite bool) error

	// Load はpath配下のアーティファクトからモデルを再構築する
	Load(ctx context.Context, path string) (*model.GeoScanModel, error)
}
