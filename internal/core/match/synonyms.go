package match

// synonymTable 同義詞 → 標準名稱
var synonymTable = map[string]string{
	"kiwifruit":          "kiwi",
	"kiwi fruit":         "kiwi",
	"chinese gooseberry": "kiwi",
	"pitaya":             "dragon fruit",
	"pitahaya":           "dragon fruit",
	"mandarin":           "orange",
	"tangerine":          "orange",
	"clementine":         "orange",
	"cantaloupe":         "melon",
	"honeydew":           "melon",
	"muskmelon":          "melon",
	"rockmelon":          "melon",
	"bilberry":           "blueberry",
	"alligator pear":     "avocado",
	"paw paw":            "papaya",
	"pawpaw":             "papaya",
	"litchi":             "lychee",
	"sultana":            "grape",
	"prune":              "plum",
}

// resolveSynonym 將同義詞解析為標準名稱
func resolveSynonym(name string) (string, bool) {
	canonical, ok := synonymTable[name]
	return canonical, ok
}

// isSynonymOf 雙向同義判定：a 是 b 的同義詞，或 b 是 a 的同義詞
func isSynonymOf(a, b string) bool {
	if canonical, ok := synonymTable[a]; ok && canonical == b {
		return true
	}
	if canonical, ok := synonymTable[b]; ok && canonical == a {
		return true
	}
	return false
}
