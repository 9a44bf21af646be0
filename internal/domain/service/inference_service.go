package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// InferenceService は入力行をタイルテーブルと左外部結合して
// クラスタIDを付与するサービス。入力行は変更せず、行数と順序を保持する
type InferenceService struct {
	index         repository.SpatialIndexProvider
	precision     *PrecisionService
	tiles         *TileService
	maxGoroutines int
	chunkSize     int
}

// NewInferenceService 新しいInferenceServiceインスタンスを作成
func NewInferenceService(index repository.SpatialIndexProvider, precision *PrecisionService, tiles *TileService) *InferenceService {
	return &InferenceService{
		index:         index,
		precision:     precision,
		tiles:         tiles,
		maxGoroutines: 8,   // 同時実行数を制限
		chunkSize:     512, // 行のチャンク単位
	}
}

// Transform はモデルのShapeから展開したタイルテーブルに対して
// 各行のセルIDを左外部結合し、一致した行にのみ予測カラムを付与する
// 一致しない行も予測カラムなしでそのまま出力される（行は落とさない）
func (s *InferenceService) Transform(ctx context.Context, m *model.GeoScanModel, rows []model.Row) (*model.PredictResponse, error) {
	resolution, err := s.precision.SelectPrecision(m.Params.Epsilon)
	if err != nil {
		return nil, err
	}

	tiles, err := s.tiles.ExpandTiles(ctx, m.Shape.Clusters, resolution, m.Params.Layers)
	if err != nil {
		return nil, err
	}

	lookup, err := s.buildLookup(tiles, m.Shape.Clusters)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := make([]model.Row, len(rows))
	matched := make([]bool, len(rows))

	// セマフォを使用して行チャンクを並行処理
	semaphore := make(chan struct{}, s.maxGoroutines)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	for offset := 0; offset < len(rows); offset += s.chunkSize {
		end := offset + s.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		wg.Add(1)
		go func(offset, end int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			for i := offset; i < end; i++ {
				result, hit, err := s.transformRow(rows[i], m.Params, resolution, lookup)
				if err != nil {
					select {
					case errCh <- fmt.Errorf("行 %d: %w", i, err):
					default:
					}
					return
				}
				out[i] = result
				matched[i] = hit
			}
		}(offset, end)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	matchedCount := 0
	for _, hit := range matched {
		if hit {
			matchedCount++
		}
	}

	log.Printf("✅ 推論完了: %d行中%d行が一致 (model=%s, resolution=%d, %v)",
		len(rows), matchedCount, m.UID, resolution, time.Since(start))

	return &model.PredictResponse{
		ModelUID:     m.UID,
		RowCount:     len(rows),
		MatchedCount: matchedCount,
		Rows:         out,
	}, nil
}

// transformRow 1行ぶんの結合処理。入力行はコピーしてから変更する
func (s *InferenceService) transformRow(row model.Row, params model.GeoScanParams, resolution int, lookup map[string]string) (model.Row, bool, error) {
	lat, err := rowFloat(row, params.LatitudeCol)
	if err != nil {
		return nil, false, err
	}
	lng, err := rowFloat(row, params.LongitudeCol)
	if err != nil {
		return nil, false, err
	}

	cellID, err := s.index.CellID(lat, lng, resolution)
	if err != nil {
		return nil, false, fmt.Errorf("セルID計算失敗: %w", err)
	}

	out := row.Clone()
	clusterID, ok := lookup[cellID]
	if ok {
		out[params.PredictionCol] = clusterID
	}
	return out, ok, nil
}

// buildLookup はタイル列からセルID→クラスタIDの結合テーブルを構築する
// layers > 0 で同一セルが複数クラスタに属する場合は、セル中心に
// ポリゴン重心が最も近いクラスタを採用する（同距離ならID昇順で先勝ち）
// 結合キーを事前に一意化するため、出力の行数が増えることはない
func (s *InferenceService) buildLookup(tiles []model.Tile, clusters []model.Cluster) (map[string]string, error) {
	centroids := make(map[string]orb.Point, len(clusters))
	for _, cluster := range clusters {
		centroids[cluster.ID] = clusterCentroid(cluster)
	}

	// タイル順に依存しないよう決定的な順序で処理する
	sorted := make([]model.Tile, len(tiles))
	copy(sorted, tiles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CellID != sorted[j].CellID {
			return sorted[i].CellID < sorted[j].CellID
		}
		return sorted[i].ClusterID < sorted[j].ClusterID
	})

	lookup := make(map[string]string, len(sorted))
	for _, tile := range sorted {
		current, ok := lookup[tile.CellID]
		if !ok {
			lookup[tile.CellID] = tile.ClusterID
			continue
		}
		if current == tile.ClusterID {
			continue
		}

		center, err := s.index.CellCenter(tile.CellID)
		if err != nil {
			return nil, fmt.Errorf("セル %s の中心取得失敗: %w", tile.CellID, err)
		}
		cellPoint := orb.Point{center.Lng, center.Lat}

		currentDist := geo.Distance(cellPoint, centroids[current])
		candidateDist := geo.Distance(cellPoint, centroids[tile.ClusterID])
		if candidateDist < currentDist {
			lookup[tile.CellID] = tile.ClusterID
		}
		// 同距離の場合はID昇順で処理済みのcurrentが残る
	}

	return lookup, nil
}

// clusterCentroid ポリゴン重心を計算する（リングは閉じてから評価）
func clusterCentroid(cluster model.Cluster) orb.Point {
	ring := make(orb.Ring, 0, len(cluster.Points)+1)
	for _, p := range cluster.Points {
		ring = append(ring, orb.Point{p.Lng, p.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	centroid, _ := planar.CentroidArea(orb.Polygon{ring})
	return centroid
}

// rowFloat 行から数値カラムを取り出す。JSON経由の数値はfloat64で届く
func rowFloat(row model.Row, col string) (float64, error) {
	value, ok := row[col]
	if !ok {
		return 0, fmt.Errorf("カラム %q がありません", col)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("カラム %q が数値ではありません (%T)", col, value)
	}
}
