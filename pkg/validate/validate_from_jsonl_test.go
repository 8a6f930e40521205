package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

func TestValidateJSONLStream_Mixed(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	line1 := oneLineJSONL(draftOrderJSON("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", "5.00"))
	line2 := oneLineJSONL(draftOrderJSON("4f3e2a10-91cd-4ee6-8a3e-111111111111", "0")) // нулевая цена
	line3 := ""                                                                        // пустая строка — ок
	line4 := oneLineJSONL(draftOrderJSON("f2c9e3a7-6d5b-4c1a-9e8f-222222222222", "5.00"))

	input := strings.Join([]string{line1, line2, line3, line4}, "\n")
	var out bytes.Buffer

	res, err := ValidateJSONLStream(ctx, validator, strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ValidLinesCount != 2 || res.InvalidLinesCount != 1 {
		t.Fatalf("unexpected counters: %+v", res)
	}

	outLines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(outLines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(outLines))
	}
	var o1, o2 domain.Order
	if err := json.Unmarshal([]byte(outLines[0]), &o1); err != nil {
		t.Fatalf("unmarshal line1: %v", err)
	}
	if err := json.Unmarshal([]byte(outLines[1]), &o2); err != nil {
		t.Fatalf("unmarshal line2: %v", err)
	}
	got := []string{o1.CustomerID.String(), o2.CustomerID.String()}
	wantSet := map[string]bool{
		"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d": true,
		"f2c9e3a7-6d5b-4c1a-9e8f-222222222222": true,
	}
	for _, id := range got {
		if !wantSet[id] {
			t.Fatalf("unexpected customer id in output: %s", id)
		}
	}
}

func TestValidateJSONLStream_LargeLine(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	bigName := strings.Repeat("X", 200_000) // > 64KB
	raw := `{
	  "customer_id":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
	  "shop_id":"c56a4180-65aa-42ec-a945-5fd21dec0538",
	  "delivery_address":{"street":"Lenina 1","postal_code":"190000","city":"SPb"},
	  "price":"5.00",
	  "items":[{
	    "product":{"id":"16fd2706-8baf-433b-82eb-8c7fada847da","name":"` + bigName + `","price":"2.50"},
	    "quantity":2,"price":"2.50","sub_total":"5.00"
	  }]
	}`

	var out bytes.Buffer
	rawCompact := oneLineJSONL(raw)
	res, err := ValidateJSONLStream(ctx, validator, strings.NewReader(rawCompact+"\n"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ValidLinesCount != 1 || res.InvalidLinesCount != 0 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if strings.Count(strings.TrimSpace(out.String()), "\n")+1 != 1 {
		t.Fatalf("expected 1 output line")
	}
}

// ------ функции-помощники ------

func oneLineJSONL(s string) string {
	var b bytes.Buffer
	_ = json.Compact(&b, []byte(s))
	return b.String()
}
