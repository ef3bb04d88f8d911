package help

// CommandInfo describes one command keyword.
type CommandInfo struct {
	Name        string `json:"name"`
	Category    string `json:"category"` // source, processing, or setting
	Syntax      string `json:"syntax"`
	Description string `json:"description"`
	Dev         bool   `json:"dev,omitempty"` // Only available in development mode
}

// OperatorInfo describes one expression operator.
type OperatorInfo struct {
	Symbol      string `json:"symbol"`
	Category    string `json:"category"`
	Precedence  int    `json:"precedence"` // Higher binds tighter
	Description string `json:"description"`
}

// commandMetadata is keyed by the lower-case command keyword.
var commandMetadata = map[string]CommandInfo{
	// Source commands
	"from":     {Name: "FROM", Category: "source", Syntax: "FROM index[, index...] [METADATA field, ...]", Description: "Read rows from one or more indices, aliases or data streams"},
	"row":      {Name: "ROW", Category: "source", Syntax: "ROW name = value[, ...]", Description: "Produce a single row of literal values"},
	"show":     {Name: "SHOW", Category: "source", Syntax: "SHOW INFO", Description: "Describe the deployment"},
	"ts":       {Name: "TS", Category: "source", Syntax: "TS index[, index...] [METADATA field, ...]", Description: "Read rows from time series indices"},
	"promql":   {Name: "PROMQL", Category: "source", Syntax: "PROMQL [param=value ...] [name=](promql)", Description: "Run a PromQL query; the query text is kept verbatim"},
	"explain":  {Name: "EXPLAIN", Category: "source", Syntax: "EXPLAIN (query)", Description: "Describe how a query would run", Dev: true},
	"external": {Name: "EXTERNAL", Category: "source", Syntax: "EXTERNAL source [WITH {options}]", Description: "Read rows from an external data source", Dev: true},

	// Processing commands
	"eval":         {Name: "EVAL", Category: "processing", Syntax: "EVAL [name =] expression[, ...]", Description: "Add computed columns"},
	"where":        {Name: "WHERE", Category: "processing", Syntax: "WHERE condition", Description: "Keep rows matching a condition"},
	"keep":         {Name: "KEEP", Category: "processing", Syntax: "KEEP pattern[, ...]", Description: "Keep only the named columns, in order"},
	"drop":         {Name: "DROP", Category: "processing", Syntax: "DROP pattern[, ...]", Description: "Remove the named columns"},
	"rename":       {Name: "RENAME", Category: "processing", Syntax: "RENAME old AS new[, ...] | RENAME new = old[, ...]", Description: "Rename columns"},
	"limit":        {Name: "LIMIT", Category: "processing", Syntax: "LIMIT count", Description: "Keep at most count rows"},
	"sample":       {Name: "SAMPLE", Category: "processing", Syntax: "SAMPLE probability", Description: "Keep a random fraction of rows"},
	"stats":        {Name: "STATS", Category: "processing", Syntax: "STATS [name =] agg [WHERE cond][, ...] [BY group, ...]", Description: "Aggregate rows, optionally grouped"},
	"inline":       {Name: "INLINE", Category: "processing", Syntax: "INLINE STATS agg[, ...] [BY group, ...]", Description: "Aggregate and attach the results to every row"},
	"inlinestats":  {Name: "INLINESTATS", Category: "processing", Syntax: "INLINESTATS agg[, ...] [BY group, ...]", Description: "Older spelling of INLINE STATS"},
	"sort":         {Name: "SORT", Category: "processing", Syntax: "SORT expr [ASC|DESC] [NULLS FIRST|LAST][, ...]", Description: "Order rows"},
	"dissect":      {Name: "DISSECT", Category: "processing", Syntax: `DISSECT field "pattern" [APPEND_SEPARATOR="sep"]`, Description: "Extract columns from a string with a dissect pattern"},
	"grok":         {Name: "GROK", Category: "processing", Syntax: `GROK field "pattern"[, ...]`, Description: "Extract columns from a string with grok patterns"},
	"enrich":       {Name: "ENRICH", Category: "processing", Syntax: "ENRICH policy [ON field] [WITH [name =] field, ...]", Description: "Add columns from an enrich policy"},
	"mv_expand":    {Name: "MV_EXPAND", Category: "processing", Syntax: "MV_EXPAND field", Description: "Expand a multi-valued column into one row per value"},
	"lookup":       {Name: "LOOKUP", Category: "processing", Syntax: "LOOKUP JOIN index ON condition", Description: "Join rows from a lookup index"},
	"left":         {Name: "LEFT", Category: "processing", Syntax: "LEFT JOIN index ON condition", Description: "Left outer join", Dev: true},
	"right":        {Name: "RIGHT", Category: "processing", Syntax: "RIGHT JOIN index ON condition", Description: "Right outer join", Dev: true},
	"change_point": {Name: "CHANGE_POINT", Category: "processing", Syntax: "CHANGE_POINT value [ON key] [AS type, pvalue]", Description: "Detect spikes, dips and change points in a metric"},
	"completion":   {Name: "COMPLETION", Category: "processing", Syntax: "COMPLETION [name =] prompt WITH {options}", Description: "Send a prompt to an inference endpoint"},
	"rerank":       {Name: "RERANK", Category: "processing", Syntax: `RERANK [name =] "query" ON field[, ...] [WITH {options}]`, Description: "Rerank rows by semantic relevance"},
	"fork":         {Name: "FORK", Category: "processing", Syntax: "FORK (commands) (commands) ...", Description: "Run several sub-pipelines over the same input"},
	"fuse":         {Name: "FUSE", Category: "processing", Syntax: "FUSE [method] [SCORE BY f] [KEY BY f, ...] [GROUP BY f] [WITH {options}]", Description: "Merge the results of FORK branches"},
	"uri_parts":    {Name: "URI_PARTS", Category: "processing", Syntax: "URI_PARTS prefix = expression", Description: "Split a URI into its components"},
	"metrics_info": {Name: "METRICS_INFO", Category: "processing", Syntax: "METRICS_INFO", Description: "Describe the metrics of a time series source"},
	"insist":       {Name: "INSIST", Category: "processing", Syntax: "INSIST pattern[, ...]", Description: "Load unmapped fields", Dev: true},
	"mmr":          {Name: "MMR", Category: "processing", Syntax: "MMR [query] ON field LIMIT n [WITH {options}]", Description: "Diversify results with maximal marginal relevance", Dev: true},

	// Settings
	"set": {Name: "SET", Category: "setting", Syntax: "SET name = value;", Description: "Set a query setting before the query"},
}

var operatorMetadata = []OperatorInfo{
	{Symbol: "OR", Category: "logical", Precedence: 1, Description: "Logical or"},
	{Symbol: "AND", Category: "logical", Precedence: 2, Description: "Logical and"},
	{Symbol: "NOT", Category: "logical", Precedence: 3, Description: "Logical negation"},

	{Symbol: "==", Category: "comparison", Precedence: 4, Description: "Equal"},
	{Symbol: "!=", Category: "comparison", Precedence: 4, Description: "Not equal"},
	{Symbol: "<", Category: "comparison", Precedence: 4, Description: "Less than"},
	{Symbol: "<=", Category: "comparison", Precedence: 4, Description: "Less than or equal"},
	{Symbol: ">", Category: "comparison", Precedence: 4, Description: "Greater than"},
	{Symbol: ">=", Category: "comparison", Precedence: 4, Description: "Greater than or equal"},
	{Symbol: "IN", Category: "predicate", Precedence: 4, Description: "Membership in a list: a IN (1, 2)"},
	{Symbol: "LIKE", Category: "predicate", Precedence: 4, Description: "Wildcard match"},
	{Symbol: "RLIKE", Category: "predicate", Precedence: 4, Description: "Regular expression match"},
	{Symbol: "IS NULL", Category: "predicate", Precedence: 4, Description: "Null test (also IS NOT NULL)"},
	{Symbol: ":", Category: "predicate", Precedence: 4, Description: "Full-text match"},

	{Symbol: "+", Category: "arithmetic", Precedence: 5, Description: "Addition"},
	{Symbol: "-", Category: "arithmetic", Precedence: 5, Description: "Subtraction"},
	{Symbol: "*", Category: "arithmetic", Precedence: 6, Description: "Multiplication"},
	{Symbol: "/", Category: "arithmetic", Precedence: 6, Description: "Division"},
	{Symbol: "%", Category: "arithmetic", Precedence: 6, Description: "Remainder"},
	{Symbol: "-x", Category: "arithmetic", Precedence: 7, Description: "Negation (also +x)"},

	{Symbol: "::", Category: "cast", Precedence: 8, Description: "Type conversion: x::long"},
	{Symbol: "|", Category: "pipe", Precedence: 0, Description: "Feed the rows of one command into the next"},
}
