// Command operator-token mints a bearer token for a dashboard operator
// using the JWT_* settings shared with the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"crm-insight/internal/config"
	"crm-insight/internal/pkg/jwt"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		operatorID = flag.String("id", "", "operator id (token subject)")
		name       = flag.String("name", "", "operator display name")
		roles      = flag.String("roles", jwt.RoleOperator, "comma-separated roles")
		verify     = flag.Bool("verify", true, "verify the minted token with the public key")
	)
	flag.Parse()

	if *operatorID == "" {
		fmt.Fprintln(os.Stderr, "usage: operator-token -id <operator> [-name <name>] [-roles operator,admin]")
		os.Exit(2)
	}

	cfg := config.Load()
	manager, err := jwt.LoadAndBuild(cfg.JWT)
	if err != nil {
		log.Fatalf("failed to load JWT keys: %v", err)
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, jti, err := manager.Generator.Generate(*operatorID, *name, roleList)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	if *verify {
		if _, err := manager.Verifier.VerifyOperator(token); err != nil {
			log.Fatalf("minted token does not pass operator verification: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "jti=%s expires_in=%s\n", jti, cfg.JWT.TTL)
	fmt.Println(token)
}
