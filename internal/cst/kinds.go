package cst

// NodeKind is a syntactic category from a fixed enumeration: statement
// kinds, expression kinds, declarator kinds, name-specifier kinds, plus
// TranslationUnit and the Unknown* fallbacks.
type NodeKind uint8

const (
	TranslationUnit NodeKind = iota

	// Statements.
	CompoundStatement
	IfStatement
	WhileStatement
	ForStatement
	RangeForStatement
	SwitchStatement
	CaseStatement
	DefaultStatement
	ReturnStatement
	BreakStatement
	ContinueStatement
	ExpressionStatement
	DeclarationStatement
	UnknownStatement

	// Expressions.
	IdExpression
	MemberExpression
	CallExpression
	BinaryOperatorExpression
	PrefixUnaryOperatorExpression
	PostfixUnaryOperatorExpression
	ParenExpression
	IntegerLiteralExpression
	FloatingLiteralExpression
	CharacterLiteralExpression
	StringLiteralExpression
	IntegerUserDefinedLiteralExpression
	FloatUserDefinedLiteralExpression
	CharUserDefinedLiteralExpression
	StringUserDefinedLiteralExpression
	UnknownExpression

	// Declarations.
	SimpleDeclaration
	NamespaceDefinition
	TagDefinition
	TemplateDeclaration
	ExplicitTemplateInstantiation
	UnknownDeclaration

	// Declarators.
	SimpleDeclarator
	ParametersAndQualifiersNode
	TrailingReturnTypeNode

	// Name specifiers.
	NestedNameSpecifier
	GlobalNameSpecifier
	DecltypeNameSpecifier
	SimpleTemplateNameSpecifier
	IdentifierNameSpecifier
)

var nodeKindNames = [...]string{
	TranslationUnit: "TranslationUnit",

	CompoundStatement: "CompoundStatement", IfStatement: "IfStatement",
	WhileStatement: "WhileStatement", ForStatement: "ForStatement",
	RangeForStatement: "RangeForStatement", SwitchStatement: "SwitchStatement",
	CaseStatement: "CaseStatement", DefaultStatement: "DefaultStatement",
	ReturnStatement: "ReturnStatement", BreakStatement: "BreakStatement",
	ContinueStatement: "ContinueStatement", ExpressionStatement: "ExpressionStatement",
	DeclarationStatement: "DeclarationStatement", UnknownStatement: "UnknownStatement",

	IdExpression: "IdExpression", MemberExpression: "MemberExpression",
	CallExpression: "CallExpression", BinaryOperatorExpression: "BinaryOperatorExpression",
	PrefixUnaryOperatorExpression:       "PrefixUnaryOperatorExpression",
	PostfixUnaryOperatorExpression:      "PostfixUnaryOperatorExpression",
	ParenExpression:                     "ParenExpression",
	IntegerLiteralExpression:            "IntegerLiteralExpression",
	FloatingLiteralExpression:           "FloatingLiteralExpression",
	CharacterLiteralExpression:          "CharacterLiteralExpression",
	StringLiteralExpression:             "StringLiteralExpression",
	IntegerUserDefinedLiteralExpression: "IntegerUserDefinedLiteralExpression",
	FloatUserDefinedLiteralExpression:   "FloatUserDefinedLiteralExpression",
	CharUserDefinedLiteralExpression:    "CharUserDefinedLiteralExpression",
	StringUserDefinedLiteralExpression:  "StringUserDefinedLiteralExpression",
	UnknownExpression:                   "UnknownExpression",

	SimpleDeclaration: "SimpleDeclaration", NamespaceDefinition: "NamespaceDefinition",
	TagDefinition: "TagDefinition", TemplateDeclaration: "TemplateDeclaration",
	ExplicitTemplateInstantiation: "ExplicitTemplateInstantiation",
	UnknownDeclaration:            "UnknownDeclaration",

	SimpleDeclarator: "SimpleDeclarator", ParametersAndQualifiersNode: "ParametersAndQualifiers",
	TrailingReturnTypeNode: "TrailingReturnType",

	NestedNameSpecifier: "NestedNameSpecifier", GlobalNameSpecifier: "GlobalNameSpecifier",
	DecltypeNameSpecifier:      "DecltypeNameSpecifier",
	SimpleTemplateNameSpecifier: "SimpleTemplateNameSpecifier",
	IdentifierNameSpecifier:    "IdentifierNameSpecifier",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return "NodeKind(?)"
}
