package match

import (
	"nutri-engine/internal/pkg/common"
)

// fruitNutrition 本地營養查詢表的單筆資料（每 100g）
type fruitNutrition struct {
	Calories  float64
	Protein   float64
	Carbs     float64
	Fiber     float64
	Fat       float64
	Sugar     float64
	VitaminC  float64 // mg
	Potassium float64 // mg
	Magnesium float64 // mg
	VitaminB6 float64 // mg
}

// defaultNutrition 名稱解析不到時的固定後備輪廓（一般水果的中位值）
var defaultNutrition = fruitNutrition{
	Calories:  55,
	Protein:   0.8,
	Carbs:     14,
	Fiber:     2.2,
	Fat:       0.3,
	Sugar:     9.5,
	VitaminC:  25,
	Potassium: 200,
	Magnesium: 12,
	VitaminB6: 0.08,
}

// fruitNutritionTable 本地營養查詢表，鍵為標準化名稱
var fruitNutritionTable = map[string]fruitNutrition{
	"kiwi":         {Calories: 61, Protein: 1.1, Carbs: 14.7, Fiber: 3.0, Fat: 0.5, Sugar: 9.0, VitaminC: 92.7, Potassium: 312, Magnesium: 17, VitaminB6: 0.06},
	"apple":        {Calories: 52, Protein: 0.3, Carbs: 13.8, Fiber: 2.4, Fat: 0.2, Sugar: 10.4, VitaminC: 4.6, Potassium: 107, Magnesium: 5, VitaminB6: 0.04},
	"banana":       {Calories: 89, Protein: 1.1, Carbs: 22.8, Fiber: 2.6, Fat: 0.3, Sugar: 12.2, VitaminC: 8.7, Potassium: 358, Magnesium: 27, VitaminB6: 0.37},
	"orange":       {Calories: 47, Protein: 0.9, Carbs: 11.8, Fiber: 2.4, Fat: 0.1, Sugar: 9.4, VitaminC: 53.2, Potassium: 181, Magnesium: 10, VitaminB6: 0.06},
	"strawberry":   {Calories: 32, Protein: 0.7, Carbs: 7.7, Fiber: 2.0, Fat: 0.3, Sugar: 4.9, VitaminC: 58.8, Potassium: 153, Magnesium: 13, VitaminB6: 0.05},
	"blueberry":    {Calories: 57, Protein: 0.7, Carbs: 14.5, Fiber: 2.4, Fat: 0.3, Sugar: 10.0, VitaminC: 9.7, Potassium: 77, Magnesium: 6, VitaminB6: 0.05},
	"raspberry":    {Calories: 52, Protein: 1.2, Carbs: 11.9, Fiber: 6.5, Fat: 0.7, Sugar: 4.4, VitaminC: 26.2, Potassium: 151, Magnesium: 22, VitaminB6: 0.06},
	"mango":        {Calories: 60, Protein: 0.8, Carbs: 15.0, Fiber: 1.6, Fat: 0.4, Sugar: 13.7, VitaminC: 36.4, Potassium: 168, Magnesium: 10, VitaminB6: 0.12},
	"pineapple":    {Calories: 50, Protein: 0.5, Carbs: 13.1, Fiber: 1.4, Fat: 0.1, Sugar: 9.9, VitaminC: 47.8, Potassium: 109, Magnesium: 12, VitaminB6: 0.11},
	"grape":        {Calories: 69, Protein: 0.7, Carbs: 18.1, Fiber: 0.9, Fat: 0.2, Sugar: 15.5, VitaminC: 3.2, Potassium: 191, Magnesium: 7, VitaminB6: 0.09},
	"watermelon":   {Calories: 30, Protein: 0.6, Carbs: 7.6, Fiber: 0.4, Fat: 0.2, Sugar: 6.2, VitaminC: 8.1, Potassium: 112, Magnesium: 10, VitaminB6: 0.05},
	"peach":        {Calories: 39, Protein: 0.9, Carbs: 9.5, Fiber: 1.5, Fat: 0.3, Sugar: 8.4, VitaminC: 6.6, Potassium: 190, Magnesium: 9, VitaminB6: 0.03},
	"pear":         {Calories: 57, Protein: 0.4, Carbs: 15.2, Fiber: 3.1, Fat: 0.1, Sugar: 9.8, VitaminC: 4.3, Potassium: 116, Magnesium: 7, VitaminB6: 0.03},
	"cherry":       {Calories: 63, Protein: 1.1, Carbs: 16.0, Fiber: 2.1, Fat: 0.2, Sugar: 12.8, VitaminC: 7.0, Potassium: 222, Magnesium: 11, VitaminB6: 0.05},
	"lemon":        {Calories: 29, Protein: 1.1, Carbs: 9.3, Fiber: 2.8, Fat: 0.3, Sugar: 2.5, VitaminC: 53.0, Potassium: 138, Magnesium: 8, VitaminB6: 0.08},
	"papaya":       {Calories: 43, Protein: 0.5, Carbs: 10.8, Fiber: 1.7, Fat: 0.3, Sugar: 7.8, VitaminC: 60.9, Potassium: 182, Magnesium: 21, VitaminB6: 0.04},
	"pomegranate":  {Calories: 83, Protein: 1.7, Carbs: 18.7, Fiber: 4.0, Fat: 1.2, Sugar: 13.7, VitaminC: 10.2, Potassium: 236, Magnesium: 12, VitaminB6: 0.08},
	"fig":          {Calories: 74, Protein: 0.8, Carbs: 19.2, Fiber: 2.9, Fat: 0.3, Sugar: 16.3, VitaminC: 2.0, Potassium: 232, Magnesium: 17, VitaminB6: 0.11},
	"date":         {Calories: 277, Protein: 1.8, Carbs: 75.0, Fiber: 6.7, Fat: 0.2, Sugar: 66.5, VitaminC: 0.0, Potassium: 696, Magnesium: 54, VitaminB6: 0.25},
	"apricot":      {Calories: 48, Protein: 1.4, Carbs: 11.1, Fiber: 2.0, Fat: 0.4, Sugar: 9.2, VitaminC: 10.0, Potassium: 259, Magnesium: 10, VitaminB6: 0.05},
	"cranberry":    {Calories: 46, Protein: 0.4, Carbs: 12.2, Fiber: 3.6, Fat: 0.1, Sugar: 4.3, VitaminC: 14.0, Potassium: 80, Magnesium: 6, VitaminB6: 0.06},
	"melon":        {Calories: 34, Protein: 0.8, Carbs: 8.2, Fiber: 0.9, Fat: 0.2, Sugar: 7.9, VitaminC: 36.7, Potassium: 267, Magnesium: 12, VitaminB6: 0.07},
	"grapefruit":   {Calories: 42, Protein: 0.8, Carbs: 10.7, Fiber: 1.6, Fat: 0.1, Sugar: 6.9, VitaminC: 31.2, Potassium: 135, Magnesium: 9, VitaminB6: 0.05},
	"lychee":       {Calories: 66, Protein: 0.8, Carbs: 16.5, Fiber: 1.3, Fat: 0.4, Sugar: 15.2, VitaminC: 71.5, Potassium: 171, Magnesium: 10, VitaminB6: 0.10},
	"guava":        {Calories: 68, Protein: 2.6, Carbs: 14.3, Fiber: 5.4, Fat: 1.0, Sugar: 8.9, VitaminC: 228.3, Potassium: 417, Magnesium: 22, VitaminB6: 0.11},
	"dragon fruit": {Calories: 60, Protein: 1.2, Carbs: 13.0, Fiber: 3.0, Fat: 0.0, Sugar: 8.0, VitaminC: 3.0, Potassium: 116, Magnesium: 10, VitaminB6: 0.04},
}

// lookupNutrition 名稱導出查詢；解析不到時回傳固定後備輪廓
func lookupNutrition(name string) (fruitNutrition, bool) {
	key := normalizeName(name)
	if n, ok := fruitNutritionTable[key]; ok {
		return n, true
	}
	// 同義詞解析後再查一次
	if canonical, ok := resolveSynonym(key); ok {
		if n, ok := fruitNutritionTable[canonical]; ok {
			return n, true
		}
	}
	return defaultNutrition, false
}

// toRecord 將本地表資料轉為標準紀錄（替代品安全驗證用）
func (n fruitNutrition) toRecord(name string) *common.NutritionRecord {
	return &common.NutritionRecord{
		ID:        common.GenerateUUID(),
		Name:      name,
		Source:    common.SourceFallback,
		Calories:  n.Calories,
		Protein:   n.Protein,
		Carbs:     n.Carbs,
		Fiber:     n.Fiber,
		Fat:       n.Fat,
		Sugar:     n.Sugar,
		VitaminC:  common.FloatPtr(n.VitaminC),
		Potassium: common.FloatPtr(n.Potassium),
		Magnesium: common.FloatPtr(n.Magnesium),
		VitaminB6: common.FloatPtr(n.VitaminB6),
	}
}
