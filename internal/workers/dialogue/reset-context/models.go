package resetcontext

type Input struct {
	SessionId     string `json:"sessionId"`
	ClearEntities bool   `json:"clearEntities"`
}

type Output struct {
	SessionId       string `json:"sessionId"`
	Reset           bool   `json:"reset"`
	EntitiesCleared bool   `json:"entitiesCleared"`
}
