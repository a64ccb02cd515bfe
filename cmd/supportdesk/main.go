// Command supportdesk はITサービスのサイトとクライアントポータルを提供するHTTPサーバー。
//
// 使い方:
//
//	supportdesk [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/supportdesk/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "supportdesk: %v\n", err)
		os.Exit(1)
	}
}
