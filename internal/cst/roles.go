package cst

// Role is a semantic edge label from a parent CST node to one of its
// children. The vocabulary here covers the roles the builder assigns, plus
// TrailingReturnType, which no builder handler assigns; it is not the CST
// node-kind taxonomy's full vocabulary.
type Role uint8

const (
	// Detached is the initial role of every node in the pending forest.
	Detached Role = iota
	// Unknown is assigned to a node folded without an explicit role.
	Unknown

	IntroducerKeyword
	OpenParen
	CloseParen
	ArrowToken
	AccessToken
	OperatorToken
	LiteralToken
	ExternKeyword
	ElseKeyword

	Condition
	ThenStatement
	ElseStatement
	BodyStatement
	InitStatement
	LoopVariable
	RangeExpression
	CaseValue
	ReturnValue

	LeftHandSide
	RightHandSide
	Operand
	Object
	Member

	CompoundStatementStatement
	SimpleDeclarationDeclarator
	DeclaratorInitializer
	DeclaratorName
	IdExpressionQualifier
	IdExpressionID
	IdExpressionTemplateKeyword
	ParametersAndQualifiersParameter
	ParametersAndQualifiersTrailingReturn
	TrailingReturnType
	TemplateDeclarationDeclaration
	ExplicitTemplateInstantiationDeclaration

	ListElement
	ListDelimiter
)

var roleNames = [...]string{
	Detached: "Detached", Unknown: "Unknown",
	IntroducerKeyword: "IntroducerKeyword", OpenParen: "OpenParen", CloseParen: "CloseParen",
	ArrowToken: "ArrowToken", AccessToken: "AccessToken", OperatorToken: "OperatorToken",
	LiteralToken: "LiteralToken", ExternKeyword: "ExternKeyword", ElseKeyword: "ElseKeyword",
	Condition: "condition", ThenStatement: "thenStatement", ElseStatement: "elseStatement",
	BodyStatement: "body", InitStatement: "init", LoopVariable: "loopVariable",
	RangeExpression: "rangeExpression", CaseValue: "caseValue", ReturnValue: "returnValue",
	LeftHandSide: "leftHandSide", RightHandSide: "rightHandSide", Operand: "operand",
	Object: "object", Member: "member",
	CompoundStatementStatement:               "CompoundStatement_statement",
	SimpleDeclarationDeclarator:               "SimpleDeclaration_declarator",
	DeclaratorInitializer:                     "SimpleDeclarator_initializer",
	DeclaratorName:                            "SimpleDeclarator_name",
	IdExpressionQualifier:                     "IdExpression_qualifier",
	IdExpressionID:                            "IdExpression_id",
	IdExpressionTemplateKeyword:               "IdExpression_templateKeyword",
	ParametersAndQualifiersParameter:          "ParametersAndQualifiers_parameter",
	ParametersAndQualifiersTrailingReturn:     "ParametersAndQualifiers_trailingReturn",
	TrailingReturnType:                        "TrailingReturnType",
	TemplateDeclarationDeclaration:            "TemplateDeclaration_declaration",
	ExplicitTemplateInstantiationDeclaration:  "ExplicitTemplateInstantiation_declaration",
	ListElement:                               "List_element",
	ListDelimiter:                             "List_delimiter",
}

func (r Role) String() string {
	if int(r) < len(roleNames) && roleNames[r] != "" {
		return roleNames[r]
	}
	return "Role(?)"
}
