package model

import "time"

// Row 推論対象の1レコード。緯度経度カラム以外は透過的に保持される
type Row map[string]any

// Clone 行の浅いコピーを返す（入力行を変更しないための防御）
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// PredictRequest POST /api/models/:uid/predict のリクエストボディ
type PredictRequest struct {
	Rows         []Row `json:"rows"`
	StoreResults bool  `json:"store_results"` // trueならFirestoreに結果を保存しjob_idを返す
}

// PredictResponse 推論結果
type PredictResponse struct {
	ModelUID     string `json:"model_uid"`
	RowCount     int    `json:"row_count"`
	MatchedCount int    `json:"matched_count"`
	Rows         []Row  `json:"rows"`
	JobID        string `json:"job_id,omitempty"`
}

// PredictionJob Firestoreにキャッシュされる推論ジョブの結果
type PredictionJob struct {
	JobID        string    `json:"job_id"`
	ModelUID     string    `json:"model_uid"`
	RowCount     int       `json:"row_count"`
	MatchedCount int       `json:"matched_count"`
	Rows         []Row     `json:"rows"`
	CreatedAt    time.Time `json:"created_at"`
}

// FirestorePredictionJob Firestoreの推論ジョブドキュメント
// 行データは任意カラムを含むためJSON文字列として保存する
type FirestorePredictionJob struct {
	ModelUID     string    `firestore:"model_uid"`
	RowCount     int       `firestore:"row_count"`
	MatchedCount int       `firestore:"matched_count"`
	ResultsJSON  string    `firestore:"results_json"`
	CreatedAt    time.Time `firestore:"created_at"`
	ExpireAt     time.Time `firestore:"expireAt"`
}
