package push

import (
	"context"
	"errors"
	"fmt"
	"log"

	webpush "github.com/SherClockHolmes/webpush-go"

	"condo-portal/internal/repositories"
)

// KeyPair is the process-wide VAPID key pair. It is resolved once at
// startup and passed by value to whoever needs it.
type KeyPair struct {
	Public  string
	Private string
}

// LoadOrGenerateKeys returns the persisted key pair, generating and saving
// a new one on first run. If the store is unreachable an ephemeral pair is
// returned so push keeps working until restart; previously registered
// devices will not validate against it.
func LoadOrGenerateKeys(ctx context.Context, repo repositories.VapidRepository) (KeyPair, error) {
	public, private, err := repo.Load(ctx)
	if err == nil {
		log.Println("vapid: loaded key pair from store")
		return KeyPair{Public: public, Private: private}, nil
	}

	if !errors.Is(err, repositories.ErrNoVapidKeys) {
		log.Printf("vapid: store unavailable, using ephemeral keys: %v", err)
		return generateKeys()
	}

	keys, genErr := generateKeys()
	if genErr != nil {
		return KeyPair{}, genErr
	}
	if saveErr := repo.Save(ctx, keys.Public, keys.Private); saveErr != nil {
		log.Printf("vapid: failed to persist generated keys, continuing ephemeral: %v", saveErr)
		return keys, nil
	}
	log.Println("vapid: generated and persisted new key pair")
	return keys, nil
}

func generateKeys() (KeyPair, error) {
	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate vapid keys: %w", err)
	}
	return KeyPair{Public: public, Private: private}, nil
}
