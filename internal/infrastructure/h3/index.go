package h3

import (
	"fmt"
	"sort"
	"strings"

	h3geo "github.com/uber/h3-go/v4"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// H3SpatialIndex はUberのH3グリッドによるSpatialIndexProvider実装
// セルIDは小文字16進文字列に正規化して返す（結合キーは大文字小文字を区別しない契約）
type H3SpatialIndex struct{}

// NewH3SpatialIndex 新しいH3SpatialIndexインスタンスを作成
func NewH3SpatialIndex() repository.SpatialIndexProvider {
	return &H3SpatialIndex{}
}

// CellID は座標を指定解像度のH3セルIDに変換する
func (idx *H3SpatialIndex) CellID(lat, lng float64, resolution int) (string, error) {
	if resolution < 0 || resolution > 15 {
		return "", fmt.Errorf("H3解像度は0〜15が必要です (resolution=%d)", resolution)
	}
	cell := h3geo.LatLngToCell(h3geo.NewLatLng(lat, lng), resolution)
	if !cell.IsValid() {
		return "", fmt.Errorf("座標 (%.6f, %.6f) のセル計算に失敗しました", lat, lng)
	}
	return strings.ToLower(cell.String()), nil
}

// PolyFill はポリゴン境界と交差するセルID集合を返す
// H3のPolygonToCellsはセル中心の包含判定のため、小さいポリゴンで
// 空集合になる場合は頂点のセルで補完する
func (idx *H3SpatialIndex) PolyFill(points []model.LatLng, resolution int, layers int) ([]string, error) {
	if resolution < 0 || resolution > 15 {
		return nil, fmt.Errorf("H3解像度は0〜15が必要です (resolution=%d)", resolution)
	}
	if layers < 0 {
		return nil, fmt.Errorf("layersは0以上が必要です (layers=%d)", layers)
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("ポリゴンには3頂点以上が必要です (points=%d)", len(points))
	}

	loop := make(h3geo.GeoLoop, 0, len(points))
	for _, p := range points {
		loop = append(loop, h3geo.NewLatLng(p.Lat, p.Lng))
	}

	cells := h3geo.PolygonToCells(h3geo.GeoPolygon{GeoLoop: loop}, resolution)

	cellSet := make(map[h3geo.Cell]struct{}, len(cells))
	for _, cell := range cells {
		cellSet[cell] = struct{}{}
	}

	// ポリゴンがセルより小さい場合の補完
	if len(cellSet) == 0 {
		for _, p := range points {
			cell := h3geo.LatLngToCell(h3geo.NewLatLng(p.Lat, p.Lng), resolution)
			if cell.IsValid() {
				cellSet[cell] = struct{}{}
			}
		}
	}

	// layersリングぶんの近傍セルで膨張
	if layers > 0 {
		dilated := make(map[h3geo.Cell]struct{}, len(cellSet))
		for cell := range cellSet {
			for _, neighbor := range h3geo.GridDisk(cell, layers) {
				dilated[neighbor] = struct{}{}
			}
		}
		cellSet = dilated
	}

	ids := make([]string, 0, len(cellSet))
	for cell := range cellSet {
		ids = append(ids, strings.ToLower(cell.String()))
	}
	sort.Strings(ids)
	return ids, nil
}

// CellCenter はセルの中心座標を返す
func (idx *H3SpatialIndex) CellCenter(cellID string) (model.LatLng, error) {
	cell := h3geo.Cell(h3geo.IndexFromString(strings.ToLower(cellID)))
	if !cell.IsValid() {
		return model.LatLng{}, fmt.Errorf("セルID %q が不正です", cellID)
	}
	center := h3geo.CellToLatLng(cell)
	return model.LatLng{Lat: center.Lat, Lng: center.Lng}, nil
}
