// Command token mints a signed identity token for local development,
// standing in for the organization's identity provider.
package main

import (
	"flag"
	"fmt"
	stdLog "log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/equipment-reservation/pkg/auth"
)

func main() {
	_ = godotenv.Load()

	id := flag.String("id", "", "subject id (random uuid when empty)")
	email := flag.String("email", "", "email of the identity")
	name := flag.String("name", "", "display name")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	var cfg auth.Config
	if err := envconfig.Process("", &cfg); err != nil {
		stdLog.Fatal(err)
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}
	if err := auth.CheckDomain(*email, cfg.Domain); err != nil {
		stdLog.Fatal(err)
	}
	if *id == "" {
		*id = uuid.NewString()
	}

	token, err := auth.MintToken(cfg, auth.Identity{
		ID:          *id,
		Email:       *email,
		DisplayName: *name,
	}, time.Now(), *ttl)
	if err != nil {
		stdLog.Fatal(err)
	}
	fmt.Println(token)
}
