package domain

import (
	"testing"
)

func TestDecodeMetadataRestoresConcreteShape(t *testing.T) {
	raw, err := EncodeMetadata(InvoiceMetadata{InvoiceID: "inv-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeMetadata(TransactionTypeInvoicePayment, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	metadata, ok := decoded.(InvoiceMetadata)
	if !ok {
		t.Fatalf("decoded as %T, want InvoiceMetadata", decoded)
	}
	if metadata.InvoiceID != "inv-1" {
		t.Fatalf("invoiceId = %s, want inv-1", metadata.InvoiceID)
	}
}

func TestDecodeMetadataRejectsUnknownType(t *testing.T) {
	if _, err := DecodeMetadata(TransactionType("refund"), []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown transaction type")
	}
}

func TestEncodeMetadataNilIsEmptyObject(t *testing.T) {
	raw, err := EncodeMetadata(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if string(raw) != `{}` {
		t.Fatalf("raw = %s, want {}", raw)
	}
}
