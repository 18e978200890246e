package cli

var RenderBoard = renderBoard

var GetIndexConfig = getIndexConfig
