// Package layercfg loads application configuration from layered sources —
// packaged defaults, machine-specific overrides, user profiles, a local .env
// file, and process environment variables — and merges them deterministically
// into a single immutable, provenance-tracked view.
//
// Layers are merged in fixed ascending precedence: app, host, user, dotenv,
// env. Mapping-vs-mapping conflicts merge recursively; everything else is
// replaced wholesale by the higher layer. Every resolved key remembers which
// layer and file last set it, so tooling can explain precedence outcomes:
//
//	cfg, err := layercfg.ReadConfig(layercfg.Options{
//		Vendor: "Acme", App: "Demo", Slug: "demo",
//	})
//	if err != nil {
//		// a present-but-malformed source failed the read
//	}
//	timeout := cfg.GetDefault("service.timeout", int64(30))
//	if origin, ok := cfg.Origin("service.timeout"); ok {
//		fmt.Println(origin.Layer, origin.Path)
//	}
//
// Environment variables and .env entries nest on "__" (DEMO_SERVICE__TIMEOUT
// becomes service.timeout) and are coerced to typed scalars before merging.
// The core is pure and synchronous; a Config is safe to share across
// goroutines without locking.
package layercfg
