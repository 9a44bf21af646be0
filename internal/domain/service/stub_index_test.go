package service

import (
	"fmt"

	"GeoScan-App/internal/domain/model"
)

// stubSpatialIndex テスト用の決定的な空間インデックス
// 座標→セルIDとポリゴン→セル集合をテーブルで与える
type stubSpatialIndex struct {
	cells   map[string]string   // "lat:lng" → セルID（未登録は "ff"）
	polys   map[string][]string // ポリゴン先頭頂点のキー → 基本セル集合
	centers map[string]model.LatLng
}

func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lng)
}

func (s *stubSpatialIndex) CellID(lat, lng float64, resolution int) (string, error) {
	if cell, ok := s.cells[coordKey(lat, lng)]; ok {
		return cell, nil
	}
	return "ff", nil
}

func (s *stubSpatialIndex) PolyFill(points []model.LatLng, resolution int, layers int) ([]string, error) {
	base, ok := s.polys[coordKey(points[0].Lat, points[0].Lng)]
	if !ok {
		return []string{}, nil
	}

	out := append([]string{}, base...)
	// layersごとに近傍セルを加えて膨張をシミュレートする
	for layer := 1; layer <= layers; layer++ {
		for _, cell := range base {
			out = append(out, fmt.Sprintf("%s-r%d", cell, layer))
		}
	}
	return out, nil
}

func (s *stubSpatialIndex) CellCenter(cellID string) (model.LatLng, error) {
	if center, ok := s.centers[cellID]; ok {
		return center, nil
	}
	return model.LatLng{}, nil
}
