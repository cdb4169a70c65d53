package match

import (
	"encoding/json"
	"fmt"
	"os"

	"nutri-engine/internal/pkg/common"
)

// DefaultCatalog 內建目錄，未提供目錄檔時使用
var DefaultCatalog = []common.Product{
	{ID: "p-001", Name: "Dried Kiwi", Badge: "Hot", Price: 180, OriginalPrice: 220},
	{ID: "p-002", Name: "Dried Mango", Badge: "Hot", Price: 160},
	{ID: "p-003", Name: "Dried Strawberry", Badge: "New", Price: 200},
	{ID: "p-004", Name: "Dried Pineapple", Price: 150},
	{ID: "p-005", Name: "Dried Banana", Price: 120},
	{ID: "p-006", Name: "Dried Apple", Price: 130},
	{ID: "p-007", Name: "Dried Cranberry", Price: 170},
	{ID: "p-008", Name: "Dried Fig", Badge: "Seasonal", Price: 210},
	{ID: "p-009", Name: "Dried Date", Price: 140},
	{ID: "p-010", Name: "Dried Guava", Badge: "Sold Out", Price: 190},
	{ID: "p-011", Name: "Dried Lychee", Badge: "Pre-order", Price: 230},
	{ID: "p-012", Name: "Dried Orange", Price: 155},
}

// LoadCatalog 從 JSON 檔載入商品目錄；路徑為空時回傳內建目錄
func LoadCatalog(path string) ([]common.Product, error) {
	if path == "" {
		return DefaultCatalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog []common.Product
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no products", path)
	}

	return catalog, nil
}
