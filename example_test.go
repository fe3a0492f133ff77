package sceneauth_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net/http"

	"github.com/MrEthical07/sceneauth"
	"github.com/redis/go-redis/v9"
)

// ExampleNew builds an Engine with an Ed25519 key and a Redis refresh store.
func ExampleNew() {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)

	cfg := sceneauth.DefaultConfig()
	cfg.Token.PrivateKey = priv
	cfg.Token.PublicKey = pub
	cfg.Token.Issuer = "example"
	cfg.Token.Audience = "web"

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	engine, err := sceneauth.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		return
	}
	defer engine.Close()
}

// ExampleEngine_Verify writes the result, including any rotated cookie, and
// branches on the failure kind.
func ExampleEngine_Verify() {
	var engine *sceneauth.Engine
	handler := func(w http.ResponseWriter, r *http.Request) {
		res, err := engine.Verify(r.Context(), r, "admin")
		var authErr *sceneauth.AuthError
		if errors.As(err, &authErr) && authErr.Kind == sceneauth.KindStorageFailure {
			_ = sceneauth.WriteResultStatus(w, http.StatusServiceUnavailable, res)
			return
		}
		_ = sceneauth.WriteResult(w, res)
	}
	_ = handler
}

// ExampleEngine_Destroy logs a scene out; a missing cookie is still a success.
func ExampleEngine_Destroy() {
	var engine *sceneauth.Engine
	handler := func(w http.ResponseWriter, r *http.Request) {
		res, _ := engine.Destroy(context.WithoutCancel(r.Context()), r, "admin")
		_ = sceneauth.WriteResult(w, res)
	}
	_ = handler
}
