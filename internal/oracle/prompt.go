package oracle

import "strings"

// PromptFor returns the extraction prompt for a profile. Unknown profiles get
// the baseline prompt.
func PromptFor(profile PromptProfile) string {
	if profile == ProfileStrict {
		return strictPrompt
	}
	return baselinePrompt
}

var basePromptParts = []string{
	`You are an expert invoice data extractor. Analyze this invoice image and extract ALL items in a structured format.`,
	``,
	`Extract the following information:`,
	`1. Invoice metadata (number, date, vendor, customer, currency)`,
	`2. ALL line items with:`,
	`   - Item number/sequence`,
	`   - Description (exact text from invoice)`,
	`   - Quantity`,
	`   - Unit price`,
	`   - Total price (net amount/amount before tax)`,
	`   - Unit of measurement (if present)`,
	`   - LLM confidence score from 0 to 10 (higher = more confident). Use decimals if needed.`,
	`3. Financial totals (subtotal, tax, total amount)`,
	``,
	`Return ONLY a valid JSON object with this exact structure:`,
	`{`,
	`  "invoice_number": "string or null",`,
	`  "invoice_date": "string or null",`,
	`  "vendor_name": "string or null",`,
	`  "customer_name": "string or null",`,
	`  "currency": "string or null",`,
	`  "items": [`,
	`    {`,
	`      "item_number": number or null,`,
	`      "description": "string",`,
	`      "quantity": number or null,`,
	`      "unit_price": number or null,`,
	`      "total": number or null,`,
	`      "unit": "string or null",`,
	`      "llm_confidence": number (0 to 10)`,
	`    }`,
	`  ],`,
	`  "subtotal": number or null,`,
	`  "tax": number or null,`,
	`  "total_amount": number or null`,
	`}`,
	``,
	`Important:`,
	`- The "total" field is the NET AMOUNT or AMOUNT BEFORE TAX (never the gross total with VAT)`,
	`- For each item, VERIFY that: quantity x unit_price = total`,
	`- Extract ONLY items you can read clearly and accurately (>=85% confidence); otherwise set llm_confidence below 8.5`,
	`- Keep descriptions exactly as they appear`,
	`- Use null for missing values`,
	`- Ensure all numbers are numeric types (not strings)`,
	`- Return ONLY valid JSON, no additional text`,
}

var strictPromptParts = []string{
	``,
	`CRITICAL COLUMN IDENTIFICATION RULES:`,
	`- The invoice contains a line-items TABLE with headers (names may vary but are similar).`,
	`- Identify the correct columns by HEADER TEXT (use the closest match):`,
	`  - quantity column headers usually: Qty, QTY, Quantity`,
	`  - unit_price column headers usually: Rate, Unit Price, Price, U/Price`,
	`  - total (net) column headers usually: Total, Net, Net Amount, Amount Before Tax, Amount (Before VAT)`,
	`  - unit column headers usually: Unit, UOM`,
	`- VAT/gross columns often include: VAT, VAT%, VAT Amount, Tax, Amount (after VAT), Gross. Do NOT use these for "total".`,
	`- Extract ONLY from the correct columns by header:`,
	`  - quantity = value under the quantity column (Qty/Quantity)`,
	`  - unit_price = value under the unit price column (Rate/Unit Price)`,
	`  - total = value under the net total column (Total/Net/Before VAT)`,
	`- DO NOT swap Qty and Rate. If unsure, SKIP the item (llm_confidence < 8.5)`,
	`- Preserve decimals exactly as printed (e.g., 1.100, 4.500, 4.950)`,
	`- Double-check each line by re-reading the same row across the columns before returning it`,
	`- If the math doesn't match, re-read the invoice carefully and correct the values`,
}

var (
	baselinePrompt = strings.Join(basePromptParts, "\n")
	strictPrompt   = strings.Join(append(append([]string{}, basePromptParts...), strictPromptParts...), "\n")
)
