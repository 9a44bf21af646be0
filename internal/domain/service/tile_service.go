package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// TileService はクラスタポリゴンをH3セル集合に展開するサービス
// クラスタごとに並行で展開し、(cluster_id, cell_id) ペアのフラットな列を返す
type TileService struct {
	index         repository.SpatialIndexProvider
	maxGoroutines int
}

// NewTileService 新しいTileServiceインスタンスを作成
func NewTileService(index repository.SpatialIndexProvider) *TileService {
	return &TileService{
		index:         index,
		maxGoroutines: 8, // 同時実行数を制限
	}
}

// tileResult クラスタ1件ぶんの展開結果
type tileResult struct {
	clusterIndex int
	tiles        []model.Tile
	err          error
}

// ExpandTiles は各クラスタのポリゴンと交差するセル集合を計算する
// layers > 0 の場合は近傍リングで膨張させる（境界近傍の点に寛容な推論のため）
// 同一セルが複数クラスタに属するペアの重複は許容され、出力にそのまま含まれる
func (s *TileService) ExpandTiles(ctx context.Context, clusters []model.Cluster, precision int, layers int) ([]model.Tile, error) {
	if layers < 0 {
		return nil, fmt.Errorf("layersは0以上が必要です (layers=%d)", layers)
	}

	// 展開前にポリゴンの妥当性を確認
	seen := make(map[string]bool, len(clusters))
	for _, cluster := range clusters {
		if len(cluster.Points) < 3 {
			return nil, fmt.Errorf("クラスタ %s: ポリゴンには3頂点以上が必要です: %w", cluster.ID, model.ErrInvalidShape)
		}
		if seen[cluster.ID] {
			return nil, fmt.Errorf("クラスタID %s が重複しています: %w", cluster.ID, model.ErrInvalidShape)
		}
		seen[cluster.ID] = true
	}

	if len(clusters) == 0 {
		return []model.Tile{}, nil
	}

	start := time.Now()

	// セマフォを使用して同時実行数を制限
	semaphore := make(chan struct{}, s.maxGoroutines)
	results := make(chan tileResult, len(clusters))
	var wg sync.WaitGroup

	for i, cluster := range clusters {
		wg.Add(1)
		go func(clusterIndex int, cluster model.Cluster) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			cells, err := s.index.PolyFill(cluster.Points, precision, layers)
			if err != nil {
				results <- tileResult{clusterIndex: clusterIndex, err: fmt.Errorf("クラスタ %s のタイル展開失敗: %w", cluster.ID, err)}
				return
			}

			tiles := make([]model.Tile, 0, len(cells))
			for _, cell := range cells {
				tiles = append(tiles, model.Tile{ClusterID: cluster.ID, CellID: cell})
			}
			results <- tileResult{clusterIndex: clusterIndex, tiles: tiles}
		}(i, cluster)
	}

	wg.Wait()
	close(results)

	// クラスタ順で結合して出力を決定的にする
	byCluster := make([][]model.Tile, len(clusters))
	for result := range results {
		if result.err != nil {
			return nil, result.err
		}
		byCluster[result.clusterIndex] = result.tiles
	}

	tiles := make([]model.Tile, 0, len(clusters))
	for _, clusterTiles := range byCluster {
		tiles = append(tiles, clusterTiles...)
	}

	log.Printf("🗺️ タイル展開完了: %dクラスタ → %dタイル (precision=%d, layers=%d, %v)",
		len(clusters), len(tiles), precision, layers, time.Since(start))

	return tiles, nil
}
