package extractor

import (
	"fmt"
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

const promptTemplate = `あなたはスーパーのチラシ画像を解析するAIです。
この画像はスーパーマーケットのチラシです。画像から読み取れるすべての商品情報をJSON形式で抽出してください。

重要: チラシには全体の有効期間（例:「2/17(月)〜2/20(木)」）が記載されていることがありますが、
商品ごとに異なる有効期間が設定されている場合があります（例:「本日限り」「18日のみ」「17日〜18日」など）。
各商品に最も適切な有効期間を判定してください。

今年は%d年です。日付は必ずYYYY-MM-DD形式で出力してください。

以下のJSON形式で出力してください（JSONのみ、他のテキストは不要）:
{
  "products": [
    {
      "productName": "商品名",
      "price": {
        "taxExcl": 198,
        "taxIncl": 214
      },
      "unit": "100g",
      "category": "肉",
      "validFrom": "%d-02-17",
      "validTo": "%d-02-20"
    }
  ]
}

ルール:
- productName: 商品名をそのまま記載（ブランド名含む）
- price.taxExcl: 税抜き価格（数値）。不明の場合はnull
- price.taxIncl: 税込み価格（数値）。不明の場合はnull。税抜き価格のみの場合は税抜き×1.08で計算
- unit: 単位（例: "1パック", "100g", "1本", "1袋"）。不明の場合は"1点"
- category: 以下のいずれか: %s
- validFrom: この価格の開始日（YYYY-MM-DD）。「本日限り」なら当日。不明ならチラシ全体の開始日。完全に不明ならnull
- validTo: この価格の終了日（YYYY-MM-DD）。「本日限り」なら当日。不明ならチラシ全体の終了日。完全に不明ならnull
- 読み取れない商品はスキップ
- 価格が完全に読み取れない商品はスキップ
- 必ず有効なJSONのみを出力すること`

// BuildPrompt returns the extraction prompt anchored to year, so relative
// dates such as 本日限り resolve to full calendar dates
func BuildPrompt(year int) string {
	labels := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		labels[i] = fmt.Sprintf("%q", string(c))
	}
	return fmt.Sprintf(promptTemplate, year, year, year, strings.Join(labels, ", "))
}
