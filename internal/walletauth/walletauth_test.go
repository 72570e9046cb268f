package walletauth

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestVerifyAcceptsGenuineSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := Message("1700000000")
	sig, err := crypto.Sign(eip191Hash(msg), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(address, msg, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsWrongAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	msg := Message("1700000000")
	sig, err := crypto.Sign(eip191Hash(msg), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	wrongAddress := crypto.PubkeyToAddress(other.PublicKey).Hex()
	if err := Verify(wrongAddress, msg, sig); err != ErrSignatureMismatch {
		t.Fatalf("err = %v, want ErrSignatureMismatch", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := Message("1700000000")
	sig, err := crypto.Sign(eip191Hash(msg), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(address, Message("1700000001"), sig); err != ErrSignatureMismatch {
		t.Fatalf("err = %v, want ErrSignatureMismatch", err)
	}
}

func TestVerifyRejectsShortSignature(t *testing.T) {
	if err := Verify("0xabc", "msg", []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short signature")
	}
}
