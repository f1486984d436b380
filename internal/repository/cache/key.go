package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// canonicalize produces a stable serialization of a parameter object:
// the value is marshalled, decoded into generic form and marshalled again,
// so that map keys come out sorted and structurally equal objects yield
// identical bytes regardless of field order.
func canonicalize(params any) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	canon, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonicalize params: %w", err)
	}
	return canon, nil
}

// deriveKey builds the store key: prefix + namespace + ":" + digest of the
// canonicalized parameter object.
func deriveKey(prefix, namespace string, params any) (string, error) {
	canon, err := canonicalize(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return prefix + namespace + ":" + hex.EncodeToString(sum[:]), nil
}
