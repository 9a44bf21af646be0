package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// アーティファクトのファイル名。path/metadata と path/data の2点構成
const (
	metadataArtifact = "metadata"
	dataArtifact     = "data"
)

// FileModelStoreRepository はモデルをファイルシステム上の
// 2アーティファクト（メタデータJSON + GeoJSONデータ）として永続化する
// 一時ディレクトリに書き切ってからリネームするため、途中で失敗しても
// 保存先に中途半端なモデルが残ることはない
type FileModelStoreRepository struct{}

// NewFileModelStoreRepository 新しいFileModelStoreRepositoryインスタンスを作成
func NewFileModelStoreRepository() repository.ModelStoreRepository {
	return &FileModelStoreRepository{}
}

// Save はモデルをpath配下に書き出す
// overwriteがfalseで保存先が既に存在する場合はErrPathExists
func (r *FileModelStoreRepository) Save(ctx context.Context, m *model.GeoScanModel, path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("保存先パスが空です")
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("保存先 %s: %w", path, model.ErrPathExists)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("保存先 %s の確認失敗: %w", path, err)
	}

	metaBytes, err := json.MarshalIndent(m.ToMetadata(), "", "  ")
	if err != nil {
		return fmt.Errorf("メタデータのマーシャル失敗: %w", err)
	}

	geoJSON, err := ShapeToGeoJSON(m.Shape)
	if err != nil {
		return err
	}

	// 一時ディレクトリに書き切ってからリネームでコミットする
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.New().String())
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("一時ディレクトリ作成失敗: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := os.WriteFile(filepath.Join(tmp, metadataArtifact), metaBytes, 0o644); err != nil {
		return fmt.Errorf("メタデータの書き込み失敗: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmp, dataArtifact), []byte(geoJSON), 0o644); err != nil {
		return fmt.Errorf("データの書き込み失敗: %w", err)
	}

	if parent := filepath.Dir(path); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("親ディレクトリ作成失敗: %w", err)
		}
	}
	if overwrite {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("既存モデルの削除失敗: %w", err)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("モデルのコミット失敗: %w", err)
	}

	log.Printf("💾 モデル保存完了: %s → %s (%dクラスタ)", m.UID, path, len(m.Shape.Clusters))
	return nil
}

// Load はpath配下のアーティファクトからモデルを再構築する
// アーティファクト欠落はErrModelNotFound、空・不正データはErrCorruptData
func (r *FileModelStoreRepository) Load(ctx context.Context, path string) (*model.GeoScanModel, error) {
	metaBytes, err := os.ReadFile(filepath.Join(path, metadataArtifact))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("メタデータアーティファクトがありません (%s): %w", path, model.ErrModelNotFound)
		}
		return nil, fmt.Errorf("メタデータの読み込み失敗: %w", err)
	}

	var meta model.ModelMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("メタデータのパース失敗: %w", model.ErrCorruptData)
	}
	if meta.Class != model.GeoScanModelClass {
		return nil, fmt.Errorf("クラスタグが不正です (%q): %w", meta.Class, model.ErrCorruptData)
	}

	dataBytes, err := os.ReadFile(filepath.Join(path, dataArtifact))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("データアーティファクトがありません (%s): %w", path, model.ErrModelNotFound)
		}
		return nil, fmt.Errorf("データの読み込み失敗: %w", err)
	}
	if strings.TrimSpace(string(dataBytes)) == "" {
		return nil, fmt.Errorf("データアーティファクトが空です (%s): %w", path, model.ErrCorruptData)
	}

	shape, err := ShapeFromGeoJSON(string(dataBytes))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrCorruptData)
	}

	log.Printf("📦 モデルロード完了: %s ← %s (%dクラスタ)", meta.UID, path, len(shape.Clusters))
	return model.ModelFromMetadata(&meta, shape), nil
}
