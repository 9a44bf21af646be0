package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeoScanModelClass メタデータアーティファクトに書き込むクラスタグ
const GeoScanModelClass = "geoscan.GeoScanModel"

// デフォルトのカラム名
const (
	DefaultPredictionCol = "prediction"
	DefaultLatitudeCol   = "latitude"
	DefaultLongitudeCol  = "longitude"
)

// GeoScanParams モデルのハイパーパラメータと入出力カラム設定
type GeoScanParams struct {
	Epsilon       float64 `json:"epsilon" db:"epsilon"`               // 距離スケール（メートル）。H3解像度の導出に使用
	Layers        int     `json:"layers" db:"layers"`                 // タイル展開時の近傍リング数（0で膨張なし）
	PredictionCol string  `json:"predictionCol" db:"prediction_col"`  // 予測クラスタIDを格納するカラム名
	LatitudeCol   string  `json:"latitudeCol" db:"latitude_col"`      // 緯度カラム名
	LongitudeCol  string  `json:"longitudeCol" db:"longitude_col"`    // 経度カラム名
}

// GeoScanModel 学習済みGEOSCANモデル
// 生成後は読み取り専用。Copyは同じShapeを参照共有する新インスタンスを返す
type GeoScanModel struct {
	UID       string        `json:"uid"`
	Shape     *Shape        `json:"shape"`
	Params    GeoScanParams `json:"params"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewGeoScanModel 新しいモデルインスタンスを作成（uidが空なら生成）
func NewGeoScanModel(uid string, shape *Shape, params GeoScanParams) *GeoScanModel {
	if uid == "" {
		uid = fmt.Sprintf("geoscan_%s", uuid.New().String())
	}
	if shape == nil {
		shape = &Shape{Clusters: []Cluster{}}
	}
	return &GeoScanModel{
		UID:       uid,
		Shape:     shape,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
}

// Copy 同一のShapeを共有する新しいモデルインスタンスを返す
// Shapeは不変データとして扱うため参照共有で安全
func (m *GeoScanModel) Copy() *GeoScanModel {
	clone := *m
	return &clone
}

// ModelMetadata path/metadata に永続化されるメタデータレコード
type ModelMetadata struct {
	UID       string        `json:"uid"`
	Class     string        `json:"class"`
	Timestamp int64         `json:"timestamp"`
	ParamMap  GeoScanParams `json:"paramMap"`
}

// ToMetadata モデルから永続化用メタデータを生成
func (m *GeoScanModel) ToMetadata() *ModelMetadata {
	return &ModelMetadata{
		UID:       m.UID,
		Class:     GeoScanModelClass,
		Timestamp: m.CreatedAt.UnixMilli(),
		ParamMap:  m.Params,
	}
}

// ModelFromMetadata メタデータとShapeからモデルを再構築
func ModelFromMetadata(meta *ModelMetadata, shape *Shape) *GeoScanModel {
	return &GeoScanModel{
		UID:       meta.UID,
		Shape:     shape,
		Params:    meta.ParamMap,
		CreatedAt: time.UnixMilli(meta.Timestamp).UTC(),
	}
}

// ModelSummary 一覧表示用のモデル概要
type ModelSummary struct {
	UID         string    `json:"uid"`
	Epsilon     float64   `json:"epsilon"`
	Layers      int       `json:"layers"`
	NumClusters int       `json:"num_clusters"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeoScanModelRecord モデルレジストリ（Supabase/PostgreSQL）の1行
type GeoScanModelRecord struct {
	UID           string    `json:"uid" db:"uid"`
	Epsilon       float64   `json:"epsilon" db:"epsilon"`
	Layers        int       `json:"layers" db:"layers"`
	PredictionCol string    `json:"prediction_col" db:"prediction_col"`
	LatitudeCol   string    `json:"latitude_col" db:"latitude_col"`
	LongitudeCol  string    `json:"longitude_col" db:"longitude_col"`
	Class         string    `json:"class" db:"class"`
	NumClusters   int       `json:"num_clusters" db:"num_clusters"`
	GeoJSON       string    `json:"geojson" db:"geojson"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ToSummary レジストリ行から概要を生成
func (r *GeoScanModelRecord) ToSummary() ModelSummary {
	return ModelSummary{
		UID:         r.UID,
		Epsilon:     r.Epsilon,
		Layers:      r.Layers,
		NumClusters: r.NumClusters,
		CreatedAt:   r.CreatedAt,
	}
}

// RegisterModelRequest POST /api/models のリクエストボディ
type RegisterModelRequest struct {
	UID           string    `json:"uid"`            // 空なら自動生成
	Epsilon       float64   `json:"epsilon"`        // 必須（メートル）
	Layers        int       `json:"layers"`         // 省略時0
	PredictionCol string    `json:"prediction_col"` // 省略時 "prediction"
	LatitudeCol   string    `json:"latitude_col"`   // 省略時 "latitude"
	LongitudeCol  string    `json:"longitude_col"`  // 省略時 "longitude"
	Clusters      []Cluster `json:"clusters"`
}

// ExportModelRequest POST /api/models/:uid/export のリクエストボディ
type ExportModelRequest struct {
	Path      string `json:"path"`
	Overwrite bool   `json:"overwrite"` // falseなら既存パスで失敗（明示的上書きポリシー）
}

// ImportModelRequest POST /api/models/import のリクエストボディ
type ImportModelRequest struct {
	Path string `json:"path"`
}
