package netconf

import "fmt"

func rpcGetConfig() string {
	return `<rpc><get-config><source><running/></source></get-config></rpc>`
}

func rpcGetCommand(cmd string) string {
	return fmt.Sprintf(`<rpc><command>%s</command></rpc>`, cmd)
}

func rpcLock() string {
	return `<rpc><lock><target><candidate/></target></lock></rpc>`
}

func rpcUnlock() string {
	return `<rpc><unlock><target><candidate/></target></unlock></rpc>`
}

func rpcEditConfig(snippet string) string {
	return fmt.Sprintf(`<rpc><edit-config><target><candidate/></target><default-operation>merge</default-operation><config>%s</config></edit-config></rpc>`, snippet)
}

func rpcEditConfigOverride(snapshot string) string {
	return fmt.Sprintf(`<rpc><edit-config><target><candidate/></target><default-operation>replace</default-operation><config>%s</config></edit-config></rpc>`, snapshot)
}

func rpcValidate() string {
	return `<rpc><validate><source><candidate/></source></validate></rpc>`
}

func rpcCommit() string {
	return `<rpc><commit/></rpc>`
}
