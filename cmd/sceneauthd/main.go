// Command sceneauthd serves scene login, verify and logout over HTTP.
//
// The login endpoint trusts its request body. Deploy it behind whatever proves
// identity for your application.
package main

import "github.com/MrEthical07/sceneauth/cmd/sceneauthd/cmd"

func main() {
	cmd.Execute()
}
