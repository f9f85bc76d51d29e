package uuid

import (
	"log"
	"strings"

	"github.com/bwmarrin/snowflake"
	uuid2 "github.com/google/uuid"
)

// SnowNode 雪花id生成节点
type SnowNode struct {
	node *snowflake.Node
}

func NewNode(nodeId int64) *SnowNode {
	node, err := snowflake.NewNode(nodeId)
	if err != nil {
		log.Fatalf("snowflake node init failed: %v", err)
	}
	return &SnowNode{node: node}
}

func (s *SnowNode) GenSnowID() int64 {
	return s.node.Generate().Int64()
}

// GenUUID16 生成16位的请求id
func GenUUID16() string {
	u := strings.ReplaceAll(uuid2.NewString(), "-", "")
	return u[:16]
}
