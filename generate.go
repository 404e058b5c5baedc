//go:generate bash -c "jq .abi ../solidity/core/artifacts/contracts/Mailbox.sol/Mailbox.json | abigen --abi - --type Mailbox --pkg contracts --out contracts/mailbox.go"

package main
