package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"GeoScan-App/internal/domain/model"
)

func TestPrecisionService_SelectPrecision(t *testing.T) {
	s := NewPrecisionService()

	t.Run("代表的なepsilonで期待解像度が返る", func(t *testing.T) {
		cases := []struct {
			name     string
			epsilon  float64
			expected int
		}{
			{"大陸スケール", 2_300_000, 0},
			{"都市スケール", 10_000, 6},
			{"街区スケール", 500, 9},
			{"最細解像度ぎりぎり", 1.1, 15},
		}

		for _, tc := range cases {
			resolution, err := s.SelectPrecision(tc.epsilon)
			assert.NoError(t, err, tc.name)
			assert.Equal(t, tc.expected, resolution, tc.name)
		}
	})

	t.Run("セル対角長がepsilon以下になることを確認", func(t *testing.T) {
		for _, epsilon := range []float64{2.0, 100, 5_000, 300_000} {
			resolution, err := s.SelectPrecision(epsilon)
			if err != nil {
				t.Fatalf("epsilon=%g でエラー: %v", epsilon, err)
			}
			if diagonal := 2 * hexEdgeLengthsM[resolution]; diagonal > epsilon {
				t.Errorf("epsilon=%g: 解像度%dの対角長%.3fmがepsilonを超えています", epsilon, resolution, diagonal)
			}
		}
	})

	t.Run("epsilonが小さすぎる場合はErrEpsilonTooSmall", func(t *testing.T) {
		for _, epsilon := range []float64{1.0, 0.5, 0, -10} {
			_, err := s.SelectPrecision(epsilon)
			if !errors.Is(err, model.ErrEpsilonTooSmall) {
				t.Errorf("epsilon=%g: ErrEpsilonTooSmallが返るべきですが %v でした", epsilon, err)
			}
		}
	})

	t.Run("epsilonが大きいほど解像度は粗くなる（単調性）", func(t *testing.T) {
		previous := 16
		for _, epsilon := range []float64{2, 50, 1_000, 20_000, 500_000, 3_000_000} {
			resolution, err := s.SelectPrecision(epsilon)
			assert.NoError(t, err)
			if resolution > previous {
				t.Errorf("epsilon=%g: 解像度%dが前回の%dより細かくなっています", epsilon, resolution, previous)
			}
			previous = resolution
		}
	})
}
