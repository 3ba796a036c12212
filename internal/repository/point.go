package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hitoshi/bizops/internal/model"
)

// parsePoint はPostgreSQLのpoint型のテキスト表現（"(lng,lat)"）をLocationに変換する。
func parsePoint(raw string) (*model.Location, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid point literal: %q", raw)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid point longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid point latitude: %w", err)
	}

	return &model.Location{Lng: lng, Lat: lat}, nil
}
